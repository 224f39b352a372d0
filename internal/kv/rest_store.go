package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RESTStore implements Store over a managed KV REST API that accepts
// Redis commands as JSON arrays (Vercel KV, Upstash).
type RESTStore struct {
	client *resty.Client
	url    string
}

type restReply struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// NewRESTStore creates a store talking to url with a bearer token.
func NewRESTStore(url, token string) *RESTStore {
	return &RESTStore{
		client: resty.New().
			SetAuthToken(token).
			SetTimeout(5 * time.Second).
			SetHeader("Content-Type", "application/json"),
		url: strings.TrimRight(url, "/"),
	}
}

func (s *RESTStore) do(ctx context.Context, command ...string) (json.RawMessage, error) {
	var ok, failed restReply
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(command).
		SetResult(&ok).
		SetError(&failed).
		Post(s.url)
	if err != nil {
		return nil, fmt.Errorf("kv %s: %w", command[0], err)
	}
	if resp.IsError() {
		if failed.Error != "" {
			return nil, fmt.Errorf("kv %s: status %d: %s", command[0], resp.StatusCode(), failed.Error)
		}
		return nil, fmt.Errorf("kv %s: status %d", command[0], resp.StatusCode())
	}
	if ok.Error != "" {
		return nil, fmt.Errorf("kv %s: %s", command[0], ok.Error)
	}
	return ok.Result, nil
}

func (s *RESTStore) MGet(ctx context.Context, keys []string) ([]*string, error) {
	out := make([]*string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	raw, err := s.do(ctx, append([]string{"MGET"}, keys...)...)
	if err != nil {
		return nil, err
	}
	var values []*string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("kv MGET: decode result: %w", err)
	}
	if len(values) != len(keys) {
		return nil, fmt.Errorf("kv MGET: got %d values for %d keys", len(values), len(keys))
	}
	copy(out, values)
	return out, nil
}

func setCommand(key, value string, ttl time.Duration) []string {
	command := []string{"SET", key, value}
	if seconds := int64(ttl / time.Second); seconds > 0 {
		command = append(command, "EX", strconv.FormatInt(seconds, 10))
	}
	return command
}

func (s *RESTStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.do(ctx, setCommand(key, value, ttl)...)
	return err
}

// SetMany sends all writes as one request to the /pipeline endpoint.
func (s *RESTStore) SetMany(ctx context.Context, entries []Entry, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}
	commands := make([][]string, len(entries))
	for i, e := range entries {
		commands[i] = setCommand(e.Key, e.Value, ttl)
	}

	var replies []restReply
	var failed restReply
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(commands).
		SetResult(&replies).
		SetError(&failed).
		Post(s.url + "/pipeline")
	if err != nil {
		return fmt.Errorf("kv pipeline: %w", err)
	}
	if resp.IsError() {
		if failed.Error != "" {
			return fmt.Errorf("kv pipeline: status %d: %s", resp.StatusCode(), failed.Error)
		}
		return fmt.Errorf("kv pipeline: status %d", resp.StatusCode())
	}
	if len(replies) != len(entries) {
		return fmt.Errorf("kv pipeline: got %d replies for %d commands", len(replies), len(entries))
	}
	for i, reply := range replies {
		if reply.Error != "" {
			return fmt.Errorf("kv pipeline SET %s: %s", entries[i].Key, reply.Error)
		}
	}
	return nil
}

func (s *RESTStore) Ping(ctx context.Context) error {
	raw, err := s.do(ctx, "PING")
	if err != nil {
		return err
	}
	var pong string
	if err := json.Unmarshal(raw, &pong); err != nil || !strings.EqualFold(pong, "PONG") {
		return errors.New("kv PING: unexpected reply")
	}
	return nil
}

func (s *RESTStore) Close() error { return nil }
