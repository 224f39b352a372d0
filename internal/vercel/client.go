// Package vercel updates project environment variables on the hosting platform.
package vercel

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://api.vercel.com"

var defaultTargets = []string{"production", "preview", "development"}

type Config struct {
	BaseURL       string
	Token         string
	ProjectID     string
	TeamID        string
	DeployHookURL string
}

type Client struct {
	client  *resty.Client
	cfg     Config
	project string
}

type envVar struct {
	ID     string   `json:"id"`
	Key    string   `json:"key"`
	Type   string   `json:"type,omitempty"`
	Target []string `json:"target,omitempty"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.Token).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.TeamID != "" {
		client.SetQueryParam("teamId", cfg.TeamID)
	}
	return &Client{client: client, cfg: cfg, project: url.PathEscape(cfg.ProjectID)}
}

// Configured reports whether the client has credentials and a project.
func (c *Client) Configured() bool {
	return c.cfg.Token != "" && c.cfg.ProjectID != ""
}

// UpsertEnv sets key to value on every target, updating the existing
// variable when one is present. It reports whether an existing var was updated.
func (c *Client) UpsertEnv(ctx context.Context, key, value string) (updated bool, err error) {
	existing, err := c.findEnv(ctx, key)
	if err != nil {
		return false, err
	}

	var apiErr apiError
	if existing != nil {
		resp, err := c.client.R().
			SetContext(ctx).
			SetBody(map[string]any{"value": value}).
			SetError(&apiErr).
			Patch("/v9/projects/" + c.project + "/env/" + url.PathEscape(existing.ID))
		if err != nil {
			return false, fmt.Errorf("update env %s: %w", key, err)
		}
		if resp.IsError() {
			return false, failure("update env "+key, resp.StatusCode(), apiErr)
		}
		return true, nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"key":    key,
			"value":  value,
			"type":   "encrypted",
			"target": defaultTargets,
		}).
		SetError(&apiErr).
		Post("/v10/projects/" + c.project + "/env")
	if err != nil {
		return false, fmt.Errorf("create env %s: %w", key, err)
	}
	if resp.IsError() {
		return false, failure("create env "+key, resp.StatusCode(), apiErr)
	}
	return false, nil
}

func (c *Client) findEnv(ctx context.Context, key string) (*envVar, error) {
	var out struct {
		Envs []envVar `json:"envs"`
	}
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v9/projects/" + c.project + "/env")
	if err != nil {
		return nil, fmt.Errorf("list envs: %w", err)
	}
	if resp.IsError() {
		return nil, failure("list envs", resp.StatusCode(), apiErr)
	}
	for i := range out.Envs {
		if out.Envs[i].Key == key {
			return &out.Envs[i], nil
		}
	}
	return nil, nil
}

// Redeploy triggers the configured deploy hook. It is a no-op without one.
func (c *Client) Redeploy(ctx context.Context) (bool, error) {
	if c.cfg.DeployHookURL == "" {
		return false, nil
	}
	resp, err := resty.New().SetTimeout(10 * time.Second).R().SetContext(ctx).Post(c.cfg.DeployHookURL)
	if err != nil {
		return false, fmt.Errorf("trigger deploy hook: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("trigger deploy hook: status %d", resp.StatusCode())
	}
	return true, nil
}

func failure(op string, status int, apiErr apiError) error {
	if apiErr.Error.Message != "" {
		return fmt.Errorf("%s: status %d: %s", op, status, apiErr.Error.Message)
	}
	return fmt.Errorf("%s: status %d", op, status)
}
