package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

type attemptKey struct{}

// attempt remembers the rate limited answer to a request so that a resend
// can be answered without reaching GitHub again.
type attempt struct {
	first *http.Response
	body  []byte
}

// replay copies the first answer without the headers the rate limit waiter
// schedules retries from.
func (a *attempt) replay(req *http.Request) *http.Response {
	header := a.first.Header.Clone()
	header.Del("Retry-After")
	header.Del(github_ratelimit.HeaderXRateLimitReset)
	return &http.Response{
		Status:        a.first.Status,
		StatusCode:    a.first.StatusCode,
		Proto:         a.first.Proto,
		ProtoMajor:    a.first.ProtoMajor,
		ProtoMinor:    a.first.ProtoMinor,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(a.body)),
		ContentLength: int64(len(a.body)),
		Request:       req,
	}
}

// attemptScope opens one attempt per request around the rate limit waiter.
// The waiter resends a limited request right away when its reset time has
// already passed, and keeps doing so while GitHub answers 403.
type attemptScope struct {
	next http.RoundTripper
}

func (t *attemptScope) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := context.WithValue(req.Context(), attemptKey{}, &attempt{})
	return t.next.RoundTrip(req.WithContext(ctx))
}

// sendOnce sits below the waiter and lets each attempt reach GitHub once.
// A resend gets the first 403/429 answer back instead.
type sendOnce struct {
	base http.RoundTripper
}

func (t *sendOnce) RoundTrip(req *http.Request) (*http.Response, error) {
	a, _ := req.Context().Value(attemptKey{}).(*attempt)
	if a == nil {
		return t.base.RoundTrip(req)
	}
	if a.first != nil {
		return a.replay(req), nil
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	a.first, a.body = resp, body
	return resp, nil
}
