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
	"strings"

	"github.com/cristalhq/acmd"

	"codeberg.org/chostback/chostback/internal/cohost"
	"codeberg.org/chostback/chostback/internal/convert"
	"codeberg.org/chostback/chostback/pkg/idlattr"
)

func init() {
	commands = append(commands, acmd.Command{
		Name:        "render",
		Description: "Convert dumped posts to HTML files",
		ExecFunc:    runRender,
	})
}

func runRender(_ context.Context, args []string) error {
	var attachmentDir string

	var flags appFlags
	fs := flags.Flags()
	// nolint: errcheck
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: render [arguments...] DIR OUT")
		fmt.Fprintln(fs.Output(), "  DIR")
		fmt.Fprintln(fs.Output(), "    \tdirectory holding dumped posts")
		fmt.Fprintln(fs.Output(), "  OUT")
		fmt.Fprintln(fs.Output(), "    \tdestination directory")
		fs.PrintDefaults()
	}
	fs.StringVar(&attachmentDir, "attachment-dir", "attachments",
		"relative path of mirrored attachments, empty to keep remote URLs")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	dir := strings.TrimSpace(fs.Arg(0))
	out := strings.TrimSpace(fs.Arg(1))
	if dir == "" || out == "" {
		return errors.New("a post directory and a destination directory are required")
	}

	if err := appPreRun(&flags); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(out, 0o750); err != nil {
		return err
	}

	ledger := idlattr.NewLedger()
	rendered := 0

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		src := filepath.Join(dir, entry.Name())

		// A post that cannot be converted is reported and skipped,
		// it never stops the run.
		if err := renderFile(ledger, src, out, attachmentDir); err != nil {
			slog.Error("cannot render post",
				slog.String("file", src),
				slog.Any("err", err),
			)
			continue
		}
		rendered++
	}

	if err := writeAudit(ledger, out); err != nil {
		return err
	}

	slog.Info("render done",
		slog.Int("posts", rendered),
		slog.Int("attributes", len(ledger.Seen())),
		slog.Int("unknown", len(ledger.UnknownSeen())),
	)
	return nil
}

func renderFile(ledger *idlattr.Ledger, src, out, attachmentDir string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	var post cohost.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return err
	}

	text, err := convert.RenderPost(ledger, &post, attachmentDir)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(src), ".json") + ".html"
	return os.WriteFile(filepath.Join(out, name), []byte(text), 0o640)
}

// writeAudit dumps the ledger for manual review: every (tag, attribute)
// pair seen during the run, and the subset not on the known-good list.
func writeAudit(ledger *idlattr.Ledger, out string) error {
	files := map[string][]idlattr.Pair{
		"attributes-seen.txt":    ledger.Seen(),
		"attributes-unknown.txt": ledger.UnknownSeen(),
	}

	for name, pairs := range files {
		fd, err := os.Create(filepath.Join(out, name))
		if err != nil {
			return err
		}

		for _, p := range pairs {
			if _, err := fmt.Fprintf(fd, "<%s %s>\n", p.Tag, p.Attr); err != nil {
				fd.Close() //nolint:errcheck
				return err
			}
		}

		if err := fd.Close(); err != nil {
			return err
		}
	}

	return nil
}
