package middleware

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP_ForwardedForFirstEntry(t *testing.T) {
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1, 172.16.0.1")
	req.Header.Set("X-Real-IP", "198.51.100.9")

	if got := ClientIP(req); got != "203.0.113.5" {
		t.Fatalf("expected first X-Forwarded-For entry, got %q", got)
	}
}

func TestClientIP_RealIPFallback(t *testing.T) {
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.9")

	if got := ClientIP(req); got != "198.51.100.9" {
		t.Fatalf("expected X-Real-IP, got %q", got)
	}
}

func TestClientIP_RemoteAddrFallback(t *testing.T) {
	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "192.0.2.7:45678"

	if got := ClientIP(req); got != "192.0.2.7" {
		t.Fatalf("expected RemoteAddr host, got %q", got)
	}
}

func TestClientIP_UnknownSentinel(t *testing.T) {
	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = ""

	if got := ClientIP(req); got != UnknownIP {
		t.Fatalf("expected %q, got %q", UnknownIP, got)
	}
}
