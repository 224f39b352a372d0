package botcheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	TurnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	TurnstileHeader    = "cf-turnstile-response"
)

// TurnstileDetector verifies a Cloudflare Turnstile token sent with the request.
type TurnstileDetector struct {
	client    *resty.Client
	secret    string
	verifyURL string
	proxies   ProxyPolicy
}

type turnstileReply struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

func NewTurnstileDetector(secret string, proxies ProxyPolicy) *TurnstileDetector {
	return NewTurnstileDetectorWithURL(secret, TurnstileVerifyURL, proxies)
}

func NewTurnstileDetectorWithURL(secret, verifyURL string, proxies ProxyPolicy) *TurnstileDetector {
	return &TurnstileDetector{
		client:    resty.New().SetTimeout(5 * time.Second),
		secret:    secret,
		verifyURL: verifyURL,
		proxies:   proxies,
	}
}

func (d *TurnstileDetector) Detect(ctx context.Context, r *http.Request) (Verdict, error) {
	token := strings.TrimSpace(r.Header.Get(TurnstileHeader))
	if token == "" {
		return Verdict{Bot: true, Reason: "missing turnstile token"}, nil
	}

	var reply turnstileReply
	resp, err := d.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"secret":   d.secret,
			"response": token,
			"remoteip": d.proxies.ClientIP(r),
		}).
		SetResult(&reply).
		Post(d.verifyURL)
	if err != nil {
		return Verdict{}, fmt.Errorf("turnstile verify: %w", err)
	}
	if resp.IsError() {
		return Verdict{}, fmt.Errorf("turnstile verify: status %d", resp.StatusCode())
	}
	if !reply.Success {
		return Verdict{Bot: true, Reason: "turnstile rejected: " + strings.Join(reply.ErrorCodes, ",")}, nil
	}
	return Verdict{}, nil
}
