package parser

import (
	"os"
	"regexp"
	"strings"

	airerrors "github.com/airdocs-mcp/airdocs/internal/errors"
	"github.com/airdocs-mcp/airdocs/internal/store"
)

// RSTParser parses reStructuredText documentation files.
type RSTParser struct {
	source  string
	baseURL string
}

var _ Parser = (*RSTParser)(nil)

// NewRSTParser returns a parser producing documents for the given
// source with URLs under baseURL.
func NewRSTParser(source, baseURL string) *RSTParser {
	return &RSTParser{source: source, baseURL: baseURL}
}

func (p *RSTParser) Extensions() []string {
	return []string{".rst", ".rest"}
}

var (
	// Heading underlines and overlines use a single repeated
	// punctuation character.
	rstAdornment = regexp.MustCompile(`^(?:={3,}|-{3,}|~{3,}|\^{3,}|"{3,}|'{3,}|` + "`" + `{3,}|#{3,}|\*{3,}|\+{3,}|\.{3,}|:{3,}|_{3,})\s*$`)

	// Inline roles like :class:`DAG` keep their text.
	rstRole = regexp.MustCompile(":[\\w.+-]+:`([^`]+)`")

	// Anonymous hyperlink targets and substitution refs.
	rstInlineLiteral = regexp.MustCompile("``([^`]+)``")
	rstLinkTrail     = regexp.MustCompile(`\x60([^\x60]+)\x60_{1,2}`)

	rstURLSuffix = regexp.MustCompile(`\.(rst|rest)$`)
)

// ParseFile extracts title, description, and cleaned text content from
// an RST file.
func (p *RSTParser) ParseFile(path, basePath string) (*store.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, airerrors.New(airerrors.ErrCodeParseFailed, "failed to read rst file", err).
			WithDetail("path", path)
	}

	relPath, err := relativePath(path, basePath)
	if err != nil {
		return nil, airerrors.New(airerrors.ErrCodeParseFailed, "failed to compute relative path", err).
			WithDetail("path", path)
	}

	title, description, content := p.extract(string(raw))
	if title == "" {
		title = fallbackTitle(path)
	}

	return &store.Document{
		Source:      p.source,
		Path:        relPath,
		Title:       title,
		Description: description,
		Section:     sectionFromPath(relPath),
		Content:     content,
		URL:         p.baseURL + "/" + rstURLSuffix.ReplaceAllString(relPath, ".html"),
	}, nil
}

// extract walks the RST source line by line, picking the first section
// heading as the title and the first body paragraph as the description
// while collecting cleaned text for indexing. Directive blocks,
// comments, and literal blocks are skipped the way a rendered page
// omits them from its prose.
func (p *RSTParser) extract(source string) (title, description, content string) {
	lines := strings.Split(source, "\n")
	var textParts []string
	var paragraph []string

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		text := cleanRSTInline(strings.Join(paragraph, " "))
		paragraph = paragraph[:0]
		if text == "" {
			return
		}
		textParts = append(textParts, text)
		if description == "" && title != "" {
			description = text
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		// Directive or comment: ".. foo:: args" or ".. comment".
		// Skip the marker line and its indented block.
		if strings.HasPrefix(trimmed, ".. ") || trimmed == ".." {
			flushParagraph()
			i = skipIndentedBlock(lines, i)
			continue
		}

		// Heading adornment: the previous non-empty line is the
		// heading text.
		if rstAdornment.MatchString(trimmed) && len(paragraph) > 0 {
			heading := cleanRSTInline(strings.Join(paragraph, " "))
			paragraph = paragraph[:0]
			if heading != "" {
				if title == "" {
					title = heading
				}
				textParts = append(textParts, heading)
			}
			continue
		}

		// Overline-style heading: adornment with no pending text;
		// the heading follows on the next line.
		if rstAdornment.MatchString(trimmed) {
			continue
		}

		if trimmed == "" {
			flushParagraph()
			continue
		}

		// Literal block introduced by "::" at end of paragraph.
		if strings.HasSuffix(trimmed, "::") {
			text := strings.TrimSuffix(trimmed, "::")
			if text != "" {
				paragraph = append(paragraph, text)
			}
			flushParagraph()
			i = skipIndentedBlock(lines, i)
			continue
		}

		paragraph = append(paragraph, trimmed)
	}
	flushParagraph()

	return title, description, collapseWhitespace(strings.Join(textParts, " "))
}

// skipIndentedBlock returns the index of the last line belonging to the
// block starting at lines[start]: the marker line plus every following
// line that is blank or indented.
func skipIndentedBlock(lines []string, start int) int {
	i := start
	for i+1 < len(lines) {
		next := lines[i+1]
		if strings.TrimSpace(next) == "" {
			// A blank line ends the block unless indented text follows.
			if i+2 < len(lines) && isIndented(lines[i+2]) {
				i++
				continue
			}
			return i + 1
		}
		if !isIndented(next) {
			return i
		}
		i++
	}
	return i
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// cleanRSTInline strips inline RST markup, keeping the readable text.
func cleanRSTInline(s string) string {
	s = rstRole.ReplaceAllString(s, "$1")
	s = rstInlineLiteral.ReplaceAllString(s, "$1")
	s = rstLinkTrail.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "|", " ")
	return collapseWhitespace(s)
}
