package contact

import (
	"errors"
	"strings"
	"testing"
)

func validRequest() Request {
	return Request{
		Name:    "Jan Jansen",
		Email:   "jan@example.com",
		Message: "Graag een afspraak.",
		Consent: true,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{name: "valid", mutate: func(*Request) {}},
		{name: "blank name", mutate: func(r *Request) { r.Name = "   " }, field: "name"},
		{name: "long name", mutate: func(r *Request) { r.Name = strings.Repeat("a", maxNameLen+1) }, field: "name"},
		{name: "missing email", mutate: func(r *Request) { r.Email = "" }, field: "email"},
		{name: "bad email", mutate: func(r *Request) { r.Email = "jan@" }, field: "email"},
		{name: "display name email", mutate: func(r *Request) { r.Email = "Jan <jan@example.com>" }, field: "email"},
		{name: "no tld", mutate: func(r *Request) { r.Email = "jan@localhost" }, field: "email"},
		{name: "name with header injection", mutate: func(r *Request) { r.Name = "Jan\r\nBcc: victim@example.org" }, field: "name"},
		{name: "name with bare newline", mutate: func(r *Request) { r.Name = "Jan\nJansen" }, field: "name"},
		{name: "phone with newline", mutate: func(r *Request) { r.Phone = "0612\n34" }, field: "phone"},
		{name: "multi line message", mutate: func(r *Request) { r.Message = "Regel een\nRegel twee" }},
		{name: "long phone", mutate: func(r *Request) { r.Phone = strings.Repeat("1", maxPhoneLen+1) }, field: "phone"},
		{name: "empty message", mutate: func(r *Request) { r.Message = "\n\t" }, field: "message"},
		{name: "long message", mutate: func(r *Request) { r.Message = strings.Repeat("x", maxMessageLen+1) }, field: "message"},
		{name: "no consent", mutate: func(r *Request) { r.Consent = false }, field: "consent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := Validate(&req)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Fatalf("expected %s error, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestValidateTrims(t *testing.T) {
	req := validRequest()
	req.Name = "  Jan  "
	req.Email = " jan@example.com "
	if err := Validate(&req); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if req.Name != "Jan" || req.Email != "jan@example.com" {
		t.Fatalf("fields not trimmed: %q %q", req.Name, req.Email)
	}
}
