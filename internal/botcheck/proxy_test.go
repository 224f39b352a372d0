package botcheck

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseTrustedProxies(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "empty", value: ""},
		{name: "single ip", value: "10.0.0.1"},
		{name: "cidr list", value: "10.0.0.0/8, 192.168.0.0/16,::1"},
		{name: "trailing comma", value: "10.0.0.1,"},
		{name: "garbage", value: "proxy.internal", wantErr: true},
		{name: "bad cidr", value: "10.0.0.0/33", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTrustedProxies(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTrustedProxies(%q) err = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	policy, err := ParseTrustedProxies("10.0.0.0/8")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tests := []struct {
		name      string
		policy    ProxyPolicy
		remote    string
		forwarded string
		realIP    string
		want      string
	}{
		{
			name:   "no headers",
			policy: policy,
			remote: "10.0.0.1:5555",
			want:   "10.0.0.1",
		},
		{
			name:      "untrusted peer cannot spoof forwarded for",
			policy:    policy,
			remote:    "198.51.100.20:5555",
			forwarded: "203.0.113.7",
			want:      "198.51.100.20",
		},
		{
			name:   "untrusted peer cannot spoof real ip",
			policy: policy,
			remote: "198.51.100.20:5555",
			realIP: "203.0.113.7",
			want:   "198.51.100.20",
		},
		{
			name:      "zero policy trusts nobody",
			remote:    "10.0.0.1:5555",
			forwarded: "203.0.113.7",
			want:      "10.0.0.1",
		},
		{
			name:      "trusted peer",
			policy:    policy,
			remote:    "10.0.0.1:5555",
			forwarded: "203.0.113.7",
			want:      "203.0.113.7",
		},
		{
			name:      "client supplied prefix is ignored",
			policy:    policy,
			remote:    "10.0.0.1:5555",
			forwarded: "1.2.3.4, 203.0.113.7, 10.0.0.2",
			want:      "203.0.113.7",
		},
		{
			name:      "all hops trusted",
			policy:    policy,
			remote:    "10.0.0.1:5555",
			forwarded: "10.0.0.3, 10.0.0.2",
			want:      "10.0.0.3",
		},
		{
			name:   "trusted peer real ip",
			policy: policy,
			remote: "10.0.0.1:5555",
			realIP: "198.51.100.2",
			want:   "198.51.100.2",
		},
		{
			name:      "malformed hop falls back to peer",
			policy:    policy,
			remote:    "10.0.0.1:5555",
			forwarded: "not-an-ip",
			want:      "10.0.0.1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := tt.policy.ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
