package catalog

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	descriptionMarkdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	descriptionPolicy   = newDescriptionPolicy()
)

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "ul", "li")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// RenderDescription converts a markdown product description into sanitized HTML.
func RenderDescription(markdown string) template.HTML {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := descriptionMarkdown.Convert([]byte(markdown), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(markdown))
	}
	return template.HTML(descriptionPolicy.SanitizeBytes(buf.Bytes()))
}
