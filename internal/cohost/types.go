// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package cohost

import (
	"encoding/json"
)

// trpcResponse is the envelope of every tRPC style endpoint.
type trpcResponse[T any] struct {
	Result struct {
		Data T `json:"data"`
	} `json:"result"`
}

// Project is a posting page on the source service.
type Project struct {
	ProjectID int    `json:"projectId"`
	Handle    string `json:"handle"`
}

type loggedInData struct {
	ProjectID int `json:"projectId"`
}

type editedProjectsData struct {
	Projects []Project `json:"projects"`
}

// PostsPage is one page of a project's post list. Items are kept raw so a
// dump preserves every field the service sends, known to us or not.
type PostsPage struct {
	NItems int               `json:"nItems"`
	NPages int               `json:"nPages"`
	Items  []json.RawMessage `json:"items"`
}

// Post is the subset of a post's fields the converter works with.
type Post struct {
	PostID          int      `json:"postId"`
	Headline        string   `json:"headline"`
	PublishedAt     string   `json:"publishedAt"`
	Blocks          []Block  `json:"blocks"`
	Tags            []string `json:"tags"`
	PostingProject  Project  `json:"postingProject"`
	SingleAuthorURL string   `json:"singlePostPageUrl"`

	// AstMap carries pre-rendered element trees for block ranges whose
	// markdown needed the authoring surface's own rendering.
	AstMap *AstMap `json:"astMap,omitempty"`
}

// Block is one content block of a post.
type Block struct {
	Type       string      `json:"type"`
	Markdown   *Markdown   `json:"markdown,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Ask        *Ask        `json:"ask,omitempty"`
}

// Markdown is the payload of a "markdown" block.
type Markdown struct {
	Content string `json:"content"`
}

// Attachment is the payload of an "attachment" block.
type Attachment struct {
	AttachmentID string `json:"attachmentId"`
	Kind         string `json:"kind"`
	FileURL      string `json:"fileURL"`
	PreviewURL   string `json:"previewURL"`
	AltText      string `json:"altText"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// Ask is the payload of an "ask" block.
type Ask struct {
	Content        string   `json:"content"`
	AnonymousAsker bool     `json:"anon"`
	AskingProject  *Project `json:"askingProject,omitempty"`
}

// AstMap maps block ranges to pre-rendered element trees.
type AstMap struct {
	Spans []AstSpan `json:"spans"`
}

// AstSpan is a pre-rendered element tree covering the markdown blocks in
// [StartIndex, EndIndex). AST is a JSON-encoded tree in the hast shape.
type AstSpan struct {
	AST        string `json:"ast"`
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
}
