package process

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestAOTransportDryRunAndSend(t *testing.T) {
	var gotDryRun Message
	mux := http.NewServeMux()
	mux.HandleFunc("/dry-run", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("process-id") != "proc" {
			t.Errorf("missing process id: %s", r.URL.RawQuery)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotDryRun)
		_, _ = io.WriteString(w, `{"Messages":[{"Data":"{\"status\":\"Connected\"}"}]}`)
	})
	mux.HandleFunc("/message", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"msg-1"}`)
	})
	mux.HandleFunc("/result/msg-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"Messages":[{"Data":"{\"status\":\"success\",\"lobbyId\":\"9\"}"}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr := NewAOTransport(srv.URL, srv.URL+"/message", "proc", time.Second)
	c, err := NewClient(tr, Options{ProcessID: "proc"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	info, err := c.Info(context.Background())
	if err != nil || info.Status != StatusConnected {
		t.Fatalf("info: %+v %v", info, err)
	}
	if gotDryRun.Tag("Action") != ActionInfo || gotDryRun.Target != "proc" {
		t.Fatalf("unexpected dry-run envelope %+v", gotDryRun)
	}
	id, err := c.CreateLobby(context.Background(), "alice", "fun")
	if err != nil || id != "9" {
		t.Fatalf("create: %q %v", id, err)
	}
}

func TestAOTransportErrors(t *testing.T) {
	tr := NewAOTransport("http://cu.invalid", "http://mu.invalid", "proc", time.Second)
	c, _ := NewClient(tr, Options{ProcessID: "proc"})

	tr.inner.Transport = roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: refused")
	})
	if _, err := c.ListLobbies(context.Background()); !IsKind(err, KindNetwork) {
		t.Fatalf("expected NETWORK, got %v", err)
	}

	tr.inner.Transport = roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader("bad gateway"))}, nil
	})
	if _, err := c.ListLobbies(context.Background()); !IsKind(err, KindNetwork) {
		t.Fatalf("expected NETWORK for 502, got %v", err)
	}

	tr.inner.Transport = roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("<html>"))}, nil
	})
	if _, err := c.ListLobbies(context.Background()); !IsKind(err, KindMalformed) {
		t.Fatalf("expected MALFORMED_RESPONSE, got %v", err)
	}

	tr.inner.Transport = roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{}`))}, nil
	})
	if err := c.JoinLobby(context.Background(), "alice", "1"); !IsKind(err, KindMalformed) {
		t.Fatalf("expected MALFORMED_RESPONSE for missing message id, got %v", err)
	}
}
