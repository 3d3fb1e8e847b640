package notifications

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown converts a template body to HTML. Raw HTML in the body is
// not passed through.
func RenderMarkdown(body string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Personalize fills {{name}} and {{email}}. Values are HTML-escaped when
// escape is set.
func Personalize(s string, r Recipient, escape bool) string {
	name, email := r.Name, r.Email
	if name == "" {
		name = "there"
	}
	if escape {
		name, email = html.EscapeString(name), html.EscapeString(email)
	}
	return strings.NewReplacer("{{name}}", name, "{{email}}", email, "{{ name }}", name, "{{ email }}", email).Replace(s)
}
