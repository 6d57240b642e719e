// Package security renders untrusted market text for display. Descriptions
// are written by market creators, so the markdown output is always run
// through an HTML sanitizer before it reaches a client.
package security

import (
	"bytes"
	"log"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var policy = bluemonday.UGCPolicy()

// RenderDescription converts a market description from markdown to
// sanitized HTML. On a rendering failure the raw text is sanitized and
// returned as-is.
func RenderDescription(description string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(description), &buf); err != nil {
		log.Printf("security: markdown render failed: %v", err)
		return policy.Sanitize(description)
	}
	return policy.Sanitize(buf.String())
}
