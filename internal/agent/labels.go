package agent

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var labelCaser = cases.Title(language.English)

// humanLabel turns a vocabulary tag into prompt-friendly prose, e.g.
// "acne_trouble" -> "Acne Trouble".
func humanLabel(tag string) string {
	return labelCaser.String(strings.ReplaceAll(tag, "_", " "))
}

// humanLabels renders a set of tags as a comma-separated phrase.
func humanLabels(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, humanLabel(t))
	}
	return strings.Join(out, ", ")
}
