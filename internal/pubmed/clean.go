// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// cleanText strips inline markup from PubMed text, decodes entities, and
// collapses whitespace.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(stripPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}
