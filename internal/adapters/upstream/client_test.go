package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetJSON_DecodesAndSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "wayfinder-test" {
			t.Errorf("unexpected User-Agent %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("unexpected Accept %q", got)
		}
		_, _ = w.Write([]byte(`{"name":"ok"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	header := http.Header{"User-Agent": []string{"wayfinder-test"}}
	if err := GetJSON(context.Background(), NewHTTPClient(time.Second), srv.URL, header, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "ok" {
		t.Errorf("expected ok, got %q", out.Name)
	}
}

func TestGetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	err := GetJSON(context.Background(), NewHTTPClient(time.Second), srv.URL, nil, &struct{}{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusServiceUnavailable || len(se.Body) != 1024 {
		t.Errorf("unexpected status error code=%d body=%d bytes", se.Code, len(se.Body))
	}
}

func TestGetJSON_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	if err := GetJSON(context.Background(), NewHTTPClient(time.Second), srv.URL, nil, &struct{}{}); err == nil {
		t.Error("expected a decode error")
	}
}
