package parser

import (
	"bytes"
	"html"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/rikas05/chat-with-pdf/internal/models"
)

// extractMarkdown renders GFM to HTML and strips the tags, so headings,
// lists and tables come out as plain text instead of raw markup.
func extractMarkdown(filePath string) ([]Page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, models.IngestionError("read markdown file", err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(data, &buf); err != nil {
		return nil, models.IngestionError("render markdown", err)
	}

	text := html.UnescapeString(stripTags(buf.String()))
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return []Page{{Number: 1, Text: strings.Join(lines, "\n")}}, nil
}
