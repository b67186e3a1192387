// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package cohost

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"sync"
)

// CacheTransport is a wrapper around [Transport] that serves repeated GET
// requests from memory. Attachment URLs are shared between posts, this
// keeps them fetched once per run.
type CacheTransport struct {
	*Transport
	sync.RWMutex

	entries map[string][]byte
}

// NewCacheTransport wraps a [Transport] with an empty cache.
func NewCacheTransport(t *Transport) *CacheTransport {
	return &CacheTransport{
		Transport: t,
		entries:   map[string][]byte{},
	}
}

// EnableCaching wraps the client's transport with a [CacheTransport]. A
// client built on a custom or already caching transport is left untouched.
func (c *Client) EnableCaching() {
	if t, ok := c.http.Transport.(*Transport); ok {
		c.http.Transport = NewCacheTransport(t)
	}
}

// RoundTrip implements [http.RoundTripper].
// A cached GET response is replayed from memory; anything else goes through
// the wrapped transport and GET response bodies are stored on the way back.
func (t *CacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.Transport.RoundTrip(req)
	}

	url := req.URL.String()
	if body, ok := t.getEntry(url); ok {
		t.Log().Debug("cache hit", slog.String("url", url))
		b := bytes.NewReader(body)
		return &http.Response{
			Status:        http.StatusText(http.StatusOK),
			StatusCode:    http.StatusOK,
			Header:        http.Header{},
			Request:       req,
			Body:          io.NopCloser(b),
			ContentLength: b.Size(),
		}, nil
	}

	rsp, err := t.Transport.RoundTrip(req)
	if err != nil || rsp.StatusCode != http.StatusOK {
		return rsp, err
	}

	body, err := io.ReadAll(rsp.Body)
	rsp.Body.Close() //nolint:errcheck
	if err != nil {
		return nil, err
	}

	t.addEntry(url, body)
	rsp.Body = io.NopCloser(bytes.NewReader(body))
	return rsp, nil
}

func (t *CacheTransport) addEntry(url string, body []byte) {
	t.Lock()
	defer t.Unlock()
	t.entries[url] = body
}

func (t *CacheTransport) getEntry(url string) ([]byte, bool) {
	t.RLock()
	defer t.RUnlock()
	body, ok := t.entries[url]
	return body, ok
}
