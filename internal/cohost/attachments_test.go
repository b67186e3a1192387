// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package cohost_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"codeberg.org/chostback/chostback/internal/cohost"
)

func TestDownloadAttachments(t *testing.T) {
	t.Run("already mirrored", func(t *testing.T) {
		assert := require.New(t)

		client, err := cohost.New()
		assert.NoError(err)

		mt, deactivate := mockResponder(client)
		defer deactivate()

		dir := t.TempDir()
		existing := filepath.Join(dir, "abc.png")
		assert.NoError(os.WriteFile(existing, []byte("mirrored"), 0o640))

		// the destination is known from the URL, no request is needed
		calls := 0
		mt.RegisterResponder("GET", "https://staging.cohostcdn.org/attachment/abc.png",
			func(_ *http.Request) (*http.Response, error) {
				calls++
				return httpmock.NewStringResponse(200, "fresh"), nil
			})

		err = client.DownloadAttachments(context.Background(), dir, []*cohost.Attachment{
			{
				AttachmentID: "abc",
				FileURL:      "https://staging.cohostcdn.org/attachment/abc.png",
			},
		})
		assert.NoError(err)
		assert.Equal(0, calls)

		content, err := os.ReadFile(existing)
		assert.NoError(err)
		assert.Equal("mirrored", string(content))
	})

	t.Run("sniffed extension", func(t *testing.T) {
		assert := require.New(t)

		client, err := cohost.New()
		assert.NoError(err)

		mt, deactivate := mockResponder(client)
		defer deactivate()

		dir := t.TempDir()
		body := "\x89PNG\r\n\x1a\nrest of the image"
		mt.RegisterResponder("GET", "https://staging.cohostcdn.org/attachment/def",
			httpmock.NewStringResponder(200, body))

		err = client.DownloadAttachments(context.Background(), dir, []*cohost.Attachment{
			{
				AttachmentID: "def",
				FileURL:      "https://staging.cohostcdn.org/attachment/def",
			},
		})
		assert.NoError(err)

		content, err := os.ReadFile(filepath.Join(dir, "def.png"))
		assert.NoError(err)
		assert.Equal(body, string(content))
	})
}
