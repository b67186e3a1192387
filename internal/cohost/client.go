// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package cohost is the client for the source service's public and
// authenticated API. It fetches a project's paginated posts and mirrors
// their attachments.
package cohost

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"

	"codeberg.org/chostback/chostback/configs"
	"codeberg.org/chostback/chostback/pkg/ctxr"
)

const acceptImageHeader = "image/webp,image/svg+xml,image/*,*/*;q=0.8"

type (
	// FetchType is the type of request the client can make.
	FetchType         uint8
	ctxRequestTypeKey struct{}
)

const (
	// APIRequest is a JSON API request.
	APIRequest FetchType = iota + 1
	// AttachmentRequest is an attachment file request.
	AttachmentRequest
)

var (
	// WithRequestType returns a new context that contains the given [FetchType].
	WithRequestType = ctxr.Setter[FetchType](ctxRequestTypeKey{})
	// CheckRequestType returns the [FetchType] of a given context.
	CheckRequestType = ctxr.Checker[FetchType](ctxRequestTypeKey{})
)

// defaultDialer is our own default net.Dialer with shorter timeout and keepalive.
var defaultDialer = net.Dialer{
	Timeout:   15 * time.Second,
	KeepAlive: 30 * time.Second,
}

// defaultTransport is our http.RoundTripper with some custom settings.
var defaultTransport = &http.Transport{
	DialContext:           defaultDialer.DialContext,
	Proxy:                 http.ProxyFromEnvironment,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          50,
	MaxIdleConnsPerHost:   4,
	IdleConnTimeout:       30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// defaultHeaders are the HTTP headers that are sent with every new request.
// They can be overridden per request.
var defaultHeaders = http.Header{
	"Accept":          []string{"application/json"},
	"Accept-Language": []string{"en-US,en;q=0.8"},
}

// Transport wraps an [http.RoundTripper].
type Transport struct {
	http.RoundTripper
	header http.Header
	logger *slog.Logger
}

// RoundTrip implements [http.RoundTripper].
// It adds the default headers, adapts the Accept header to the request type
// found in context and logs (debug level) every request.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	// A RoundTripper should not modify the request. Since we only want to
	// add headers, we can work with a shallow copy.
	req := new(http.Request)
	*req = *r
	req.Header = req.Header.Clone()

	req.Header.Set("User-Agent", configs.Config.UserAgent)
	for k, values := range t.header {
		if _, ok := r.Header[textproto.CanonicalMIMEHeaderKey(k)]; !ok {
			req.Header[k] = values
		}
	}

	if ft, ok := CheckRequestType(req.Context()); ok && ft == AttachmentRequest {
		req.Header.Set("Accept", acceptImageHeader)
	}

	attrs := []slog.Attr{
		slog.Group("request",
			slog.String("url", req.URL.String()),
			slog.String("method", req.Method),
		),
	}

	now := time.Now()
	rsp, err := t.RoundTripper.RoundTrip(req)

	if err != nil {
		attrs = append(attrs, slog.Group("response",
			slog.Any("err", err),
		))
	} else {
		attrs = append(attrs, slog.Group("response",
			slog.Int("status", rsp.StatusCode),
		))
	}
	attrs = append(attrs, slog.Duration("time", time.Since(now)))
	t.Log().LogAttrs(context.Background(), slog.LevelDebug, "request", attrs...)

	return rsp, err
}

// Log returns the transport's logger.
func (t *Transport) Log() *slog.Logger {
	return t.logger
}

// SetLogger sets the transport's logger.
func (t *Transport) SetLogger(l *slog.Logger) {
	t.logger = l
}

// newHTTPClient returns an [http.Client] with a [Transport] instance and a
// cookie jar. When a session cookie is configured, it is set on the origin
// so that authenticated endpoints can be used.
func newHTTPClient(origin *url.URL) *http.Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	if configs.Config.Cohost.Cookie != "" {
		jar.SetCookies(origin, []*http.Cookie{{
			Name:     "connect.sid",
			Value:    configs.Config.Cohost.Cookie,
			Secure:   true,
			HttpOnly: true,
		}})
	}

	return &http.Client{
		Transport: &Transport{
			RoundTripper: defaultTransport.Clone(),
			header:       defaultHeaders.Clone(),
			logger:       slog.Default(),
		},
		Timeout: 30 * time.Second,
		Jar:     jar,
	}
}
