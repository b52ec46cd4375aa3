package server

import (
	"net/http"
	"testing"
)

func TestNewTimeouts(t *testing.T) {
	srv := New(":0", http.NotFoundHandler())
	if srv.ReadHeaderTimeout == 0 || srv.ReadTimeout == 0 || srv.WriteTimeout == 0 || srv.IdleTimeout == 0 {
		t.Fatalf("timeouts not set: %+v", srv)
	}
	if srv.ReadHeaderTimeout > srv.ReadTimeout {
		t.Errorf("header timeout %v exceeds read timeout %v", srv.ReadHeaderTimeout, srv.ReadTimeout)
	}
}
