package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns the prose of a Markdown document. Code blocks, images
// and rules are dropped; links keep their text.
func (n *Normaliser) Normalise(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return stripMarkdown(strings.ToValidUTF8(string(content), "")), nil
}

var (
	heading     = regexp.MustCompile(`^#{1,6}\s+`)
	closingHash = regexp.MustCompile(`\s+#+\s*$`)
	quote       = regexp.MustCompile(`^(>\s?)+`)
	bullet      = regexp.MustCompile(`^\s*[-*+]\s+`)
	numbered    = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	rule        = regexp.MustCompile(`^\s*([-*_]\s*){3,}$`)
	underline   = regexp.MustCompile(`^\s*=+\s*$`)
	tableRule   = regexp.MustCompile(`^\s*\|?(\s*:?-+:?\s*\|)+\s*:?-*:?\s*$`)
	image       = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	link        = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	inlineCode  = regexp.MustCompile("`[^`\n]+`")
)

// stripMarkdown works line by line. A fenced code block or a thematic break
// becomes one blank line; runs of blank lines collapse to one.
func stripMarkdown(content string) string {
	var out []string
	fence := ""

	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)

		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			out = append(out, "")
			continue
		}

		switch {
		case rule.MatchString(line):
			out = append(out, "")
			continue
		case underline.MatchString(line), tableRule.MatchString(line):
			continue
		}

		out = append(out, stripLine(line))
	}

	return collapse(out)
}

func stripLine(line string) string {
	line = quote.ReplaceAllString(line, "")
	if heading.MatchString(line) {
		line = closingHash.ReplaceAllString(heading.ReplaceAllString(line, ""), "")
	}
	line = bullet.ReplaceAllString(line, "")
	line = numbered.ReplaceAllString(line, "")

	if strings.HasPrefix(strings.TrimSpace(line), "|") {
		cells := strings.Split(strings.Trim(strings.TrimSpace(line), "|"), "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		line = strings.Join(cells, " ")
	}

	line = image.ReplaceAllString(line, "")
	line = link.ReplaceAllString(line, "$1")
	line = inlineCode.ReplaceAllString(line, "")
	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "__", "")
	line = strings.ReplaceAll(line, "*", "")
	return strings.TrimRight(line, " \t")
}

func collapse(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" && (len(kept) == 0 || kept[len(kept)-1] == "") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
