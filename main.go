// SPDX-FileCopyrightText: © 2025 chostback contributors
//
// SPDX-License-Identifier: AGPL-3.0-only

// chostback dumps a project's posts from a cohost style publishing service
// and converts them into canonical static HTML fragments.
package main

import (
	"codeberg.org/chostback/chostback/internal/app"
)

func main() {
	app.Run()
}
