package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 4 << 20

// AOTransport talks to an AO compute unit for reads and results and to a
// message unit for writes.
type AOTransport struct {
	inner      *http.Client
	cuURL      string
	messageURL string
	processID  string
}

func NewAOTransport(cuURL, messageURL, processID string, timeout time.Duration) *AOTransport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AOTransport{
		inner:      &http.Client{Timeout: timeout},
		cuURL:      strings.TrimRight(cuURL, "/"),
		messageURL: strings.TrimRight(messageURL, "/"),
		processID:  processID,
	}
}

func (t *AOTransport) DryRun(ctx context.Context, msg Message) (Result, error) {
	endpoint := t.cuURL + "/dry-run?process-id=" + url.QueryEscape(t.processID)
	var res Result
	if err := t.do(ctx, http.MethodPost, endpoint, msg, &res); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (t *AOTransport) Send(ctx context.Context, msg Message) (Result, error) {
	var ack struct {
		ID string `json:"id"`
	}
	if err := t.do(ctx, http.MethodPost, t.messageURL, msg, &ack); err != nil {
		return Result{}, err
	}
	if ack.ID == "" {
		return Result{}, malformed(msg.Tag("Action"), "message unit returned no id")
	}
	endpoint := fmt.Sprintf("%s/result/%s?process-id=%s", t.cuURL, url.PathEscape(ack.ID), url.QueryEscape(t.processID))
	var res Result
	if err := t.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (t *AOTransport) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.inner.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", method, req.URL.Path, resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Failure{Kind: KindMalformed, Message: "undecodable unit response", Err: err}
	}
	return nil
}
