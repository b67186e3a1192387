// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package cohost

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

// downloadConcurrency bounds how many attachments are fetched at once.
const downloadConcurrency = 4

// Attachments collects the attachment payloads of a post's blocks.
func (p *Post) Attachments() []*Attachment {
	var res []*Attachment
	for _, b := range p.Blocks {
		if b.Type == "attachment" && b.Attachment != nil {
			res = append(res, b.Attachment)
		}
	}
	return res
}

// LocalName returns the file name an attachment is mirrored under. When the
// source URL carries no usable extension, ext (sniffed from the content) is
// used instead.
func (a *Attachment) LocalName(ext string) string {
	if e := path.Ext(path.Base(a.FileURL)); e != "" {
		ext = e
	}
	return a.AttachmentID + ext
}

// DownloadAttachments mirrors every attachment into dir, fetching them
// concurrently. Existing files are kept. It returns the first error
// encountered, after the running downloads finish.
func (c *Client) DownloadAttachments(ctx context.Context, dir string, attachments []*Attachment) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)

	for _, a := range attachments {
		g.Go(func() error {
			return c.downloadAttachment(ctx, dir, a)
		})
	}

	return g.Wait()
}

func (c *Client) downloadAttachment(ctx context.Context, dir string, a *Attachment) error {
	// A URL with an extension names its mirror file without any sniffing,
	// so an already mirrored attachment is skipped before any request.
	if path.Ext(path.Base(a.FileURL)) != "" {
		dest := filepath.Join(dir, a.LocalName(""))
		if _, err := os.Stat(dest); err == nil {
			c.logger.Debug("attachment already mirrored", slog.String("file", dest))
			return nil
		}
	}

	req, err := http.NewRequestWithContext(
		WithRequestType(ctx, AttachmentRequest),
		http.MethodGet, a.FileURL, nil,
	)
	if err != nil {
		return err
	}

	rsp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close() //nolint:errcheck

	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d on %s", rsp.StatusCode, a.FileURL)
	}

	// Sniff the content type from the first bytes, so files without an
	// extension in their URL still get a usable one.
	buf := new(bytes.Buffer)
	sniffed, err := mimetype.DetectReader(io.TeeReader(rsp.Body, buf))
	if err != nil {
		return err
	}

	dest := filepath.Join(dir, a.LocalName(sniffed.Extension()))
	if _, err = os.Stat(dest); err == nil {
		c.logger.Debug("attachment already mirrored", slog.String("file", dest))
		return nil
	}

	fd, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer fd.Close() //nolint:errcheck

	if _, err = io.Copy(fd, io.MultiReader(buf, rsp.Body)); err != nil {
		return err
	}

	c.logger.Info("attachment mirrored",
		slog.String("url", a.FileURL),
		slog.String("file", dest),
	)
	return nil
}
