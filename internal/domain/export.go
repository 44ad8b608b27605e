package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportDocument serializes a document as indented JSON, with no transformation.
func ExportDocument(doc QuizDocument) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// ExportFileName derives the download name for an exported document.
func ExportFileName(title string) string {
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(title), "_")
	if name == "" {
		name = "quiz"
	}
	return name + "_export.json"
}

// FormatSeconds renders a duration in seconds as "Xm Ys" or "Ys".
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	minutes, seconds := total/60, total%60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
