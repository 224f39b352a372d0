// Package instagram talks to the Instagram Graph API for the site's feed
// widget and for long-lived token rotation.
package instagram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const mediaFields = "id,caption,media_type,media_url,permalink,thumbnail_url,timestamp"

var ErrNoToken = errors.New("instagram access token not configured")

// Token is a refreshed long-lived access token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Media struct {
	ID           string `json:"id"`
	Caption      string `json:"caption,omitempty"`
	MediaType    string `json:"mediaType"`
	MediaURL     string `json:"mediaUrl"`
	Permalink    string `json:"permalink"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Timestamp    string `json:"timestamp"`
}

type graphMedia struct {
	ID           string `json:"id"`
	Caption      string `json:"caption"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	Permalink    string `json:"permalink"`
	ThumbnailURL string `json:"thumbnail_url"`
	Timestamp    string `json:"timestamp"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type Client struct {
	client *resty.Client
}

func NewClient(graphURL string) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(strings.TrimRight(graphURL, "/")).
			SetTimeout(10 * time.Second),
	}
}

// RefreshToken exchanges a valid long-lived token for a new one.
func (c *Client) RefreshToken(ctx context.Context, token string) (Token, error) {
	if strings.TrimSpace(token) == "" {
		return Token{}, ErrNoToken
	}
	var out Token
	var apiErr graphError
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":   "ig_refresh_token",
			"access_token": token,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Get("/refresh_access_token")
	if err != nil {
		return Token{}, fmt.Errorf("refresh instagram token: %w", err)
	}
	if resp.IsError() {
		return Token{}, graphFailure("refresh instagram token", resp.StatusCode(), apiErr)
	}
	if out.AccessToken == "" {
		return Token{}, errors.New("refresh instagram token: empty access_token in reply")
	}
	return out, nil
}

// Media lists the most recent posts of the token's account.
func (c *Client) Media(ctx context.Context, token string, limit int) ([]Media, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoToken
	}
	var out struct {
		Data []graphMedia `json:"data"`
	}
	var apiErr graphError
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       mediaFields,
			"limit":        strconv.Itoa(limit),
			"access_token": token,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Get("/me/media")
	if err != nil {
		return nil, fmt.Errorf("list instagram media: %w", err)
	}
	if resp.IsError() {
		return nil, graphFailure("list instagram media", resp.StatusCode(), apiErr)
	}

	items := make([]Media, 0, len(out.Data))
	for _, m := range out.Data {
		items = append(items, Media{
			ID:           m.ID,
			Caption:      m.Caption,
			MediaType:    m.MediaType,
			MediaURL:     m.MediaURL,
			Permalink:    m.Permalink,
			ThumbnailURL: m.ThumbnailURL,
			Timestamp:    m.Timestamp,
		})
	}
	return items, nil
}

func graphFailure(op string, status int, apiErr graphError) error {
	if apiErr.Error.Message != "" {
		return fmt.Errorf("%s: status %d: %s", op, status, apiErr.Error.Message)
	}
	return fmt.Errorf("%s: status %d", op, status)
}
