package service

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var htmlPolicy = bluemonday.UGCPolicy()

// RenderMarkdown converts markdown (comment bodies) to sanitized HTML.
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return htmlPolicy.Sanitize(buf.String()), nil
}

// SanitizeHTML strips any markup outside the allowed tag set before content
// is stored or displayed.
func SanitizeHTML(content string) string {
	return htmlPolicy.Sanitize(content)
}
