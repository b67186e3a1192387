// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package cohost

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"

	"codeberg.org/chostback/chostback/configs"
)

// Client talks to the source service's API.
type Client struct {
	http   *http.Client
	origin *url.URL
	logger *slog.Logger
}

// New returns a [Client] for the configured origin.
func New(options ...func(c *Client)) (*Client, error) {
	origin, err := url.Parse(configs.Config.Cohost.Origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin: %w", err)
	}

	res := &Client{
		origin: origin,
		logger: slog.Default().With(slog.String("origin", origin.String())),
	}

	for _, fn := range options {
		if fn != nil {
			fn(res)
		}
	}

	if res.http == nil {
		res.http = newHTTPClient(origin)
	}

	if t, ok := res.http.Transport.(*Transport); ok {
		t.SetLogger(res.logger)
	}

	return res, nil
}

// WithHTTPClient sets the client's underlying [http.Client].
func WithHTTPClient(client *http.Client) func(c *Client) {
	return func(c *Client) {
		c.http = client
	}
}

// HTTPClient returns the client's underlying [http.Client].
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Log returns the client's logger.
func (c *Client) Log() *slog.Logger {
	return c.logger
}

// getJSON performs a GET request on a service path and decodes the JSON
// response body into dst.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	u := c.origin.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(WithRequestType(ctx, APIRequest), http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	rsp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close() //nolint:errcheck

	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d on %s", rsp.StatusCode, u)
	}

	return json.NewDecoder(rsp.Body).Decode(dst)
}

// LoggedIn returns the project ID the session is logged in as.
func (c *Client) LoggedIn(ctx context.Context) (int, error) {
	var data trpcResponse[loggedInData]
	if err := c.getJSON(ctx, "/api/v1/trpc/login.loggedIn", nil, &data); err != nil {
		return 0, err
	}
	return data.Result.Data.ProjectID, nil
}

// ListEditedProjects returns the projects the session can edit.
func (c *Client) ListEditedProjects(ctx context.Context) ([]Project, error) {
	var data trpcResponse[editedProjectsData]
	if err := c.getJSON(ctx, "/api/v1/trpc/projects.listEditedProjects", nil, &data); err != nil {
		return nil, err
	}
	return data.Result.Data.Projects, nil
}

// PostsPage returns one page of a project's posts.
func (c *Client) PostsPage(ctx context.Context, project string, page int) (*PostsPage, error) {
	res := new(PostsPage)
	err := c.getJSON(ctx,
		"/api/v1/project/"+url.PathEscape(project)+"/posts",
		url.Values{"page": []string{fmt.Sprint(page)}},
		res,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ProjectPosts iterates over every raw post of a project, page by page.
//
// A page may have zero visible items without being the last one; the
// iteration only stops when the service reports zero pages, or on the first
// request error.
func (c *Client) ProjectPosts(ctx context.Context, project string) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		for page := 0; ; page++ {
			c.logger.Info("fetching posts",
				slog.String("project", project),
				slog.Int("page", page),
			)

			res, err := c.PostsPage(ctx, project, page)
			if err != nil {
				yield(nil, err)
				return
			}

			if res.NPages == 0 {
				return
			}

			for _, item := range res.Items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}
