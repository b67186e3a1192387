// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cristalhq/acmd"

	"codeberg.org/chostback/chostback/configs"
	"codeberg.org/chostback/chostback/internal/cohost"
)

func init() {
	commands = append(commands, acmd.Command{
		Name:        "dump",
		Description: "Dump a project's posts to JSON files",
		ExecFunc:    runDump,
	})
}

func runDump(ctx context.Context, args []string) error {
	var withAttachments bool

	var flags appFlags
	fs := flags.Flags()
	// nolint: errcheck
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: dump [arguments...] PROJECT DIR")
		fmt.Fprintln(fs.Output(), "  PROJECT")
		fmt.Fprintln(fs.Output(), "    \tproject handle")
		fmt.Fprintln(fs.Output(), "  DIR")
		fmt.Fprintln(fs.Output(), "    \tdestination directory")
		fs.PrintDefaults()
	}
	fs.BoolVar(&withAttachments, "attachments", false, "mirror post attachments")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	project := strings.TrimSpace(fs.Arg(0))
	dir := strings.TrimSpace(fs.Arg(1))
	if project == "" || dir == "" {
		return errors.New("a project handle and a destination directory are required")
	}

	if err := appPreRun(&flags); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	client, err := cohost.New()
	if err != nil {
		return err
	}

	if withAttachments {
		// Attachments shared between posts get fetched once.
		client.EnableCaching()
	}

	if configs.Config.Cohost.Cookie != "" {
		slog.Info("session cookie is set; the dump will include private and logged-in-only posts")
		if err := checkSession(ctx, client, project); err != nil {
			return err
		}
	} else {
		slog.Info("session cookie is not set; the dump will exclude private and logged-in-only posts")
	}

	for item, err := range client.ProjectPosts(ctx, project) {
		if err != nil {
			return err
		}

		var post cohost.Post
		if err := json.Unmarshal(item, &post); err != nil {
			return fmt.Errorf("unreadable post: %w", err)
		}

		dest := filepath.Join(dir, fmt.Sprintf("%d.json", post.PostID))
		if err := os.WriteFile(dest, item, 0o640); err != nil {
			return err
		}
		slog.Info("post saved", slog.String("file", dest))

		if withAttachments {
			err := client.DownloadAttachments(ctx, filepath.Join(dir, "attachments"), post.Attachments())
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// checkSession verifies who the session is logged in as, and refuses to dump
// a project the session can edit while being logged in as another one, since
// the service then hides some of its posts.
func checkSession(ctx context.Context, client *cohost.Client, project string) error {
	loggedInID, err := client.LoggedIn(ctx)
	if err != nil {
		return err
	}

	projects, err := client.ListEditedProjects(ctx)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(projects, func(p cohost.Project) bool {
		return p.ProjectID == loggedInID
	})
	if idx < 0 {
		return errors.New("you seem to be logged in as a project you don't own")
	}
	loggedIn := projects[idx]
	slog.Info("logged in", slog.String("handle", "@"+loggedIn.Handle))

	idx = slices.IndexFunc(projects, func(p cohost.Project) bool {
		return p.Handle == project
	})
	switch {
	case idx < 0:
		slog.Info("dumping a project you don't own", slog.String("project", "@"+project))
	case projects[idx].ProjectID != loggedInID:
		return fmt.Errorf("you wanted to dump posts for @%s, but you are logged in as @%s",
			project, loggedIn.Handle)
	default:
		slog.Info("dumping a project you own and are logged in as", slog.String("project", "@"+project))
	}

	return nil
}
