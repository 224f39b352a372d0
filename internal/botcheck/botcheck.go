// Package botcheck classifies inbound requests as automated or human.
package botcheck

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/x-way/crawlerdetect"
)

// Verdict is the outcome of a detection pass.
type Verdict struct {
	Bot    bool
	Reason string
}

type Detector interface {
	Detect(ctx context.Context, r *http.Request) (Verdict, error)
}

// UserAgentDetector flags empty and known crawler user agents.
type UserAgentDetector struct{}

func (UserAgentDetector) Detect(_ context.Context, r *http.Request) (Verdict, error) {
	ua := strings.TrimSpace(r.UserAgent())
	if ua == "" {
		return Verdict{Bot: true, Reason: "missing user agent"}, nil
	}
	if crawlerdetect.IsCrawler(ua) {
		return Verdict{Bot: true, Reason: "crawler user agent"}, nil
	}
	return Verdict{}, nil
}

// Chain runs detectors in order. The first bot verdict wins; when no detector
// flags the request, errors from the others are joined and returned.
type Chain []Detector

func (c Chain) Detect(ctx context.Context, r *http.Request) (Verdict, error) {
	var errs []error
	for _, d := range c {
		verdict, err := d.Detect(ctx, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if verdict.Bot {
			return verdict, nil
		}
	}
	return Verdict{}, errors.Join(errs...)
}
