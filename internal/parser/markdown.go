package parser

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	airerrors "github.com/airdocs-mcp/airdocs/internal/errors"
	"github.com/airdocs-mcp/airdocs/internal/store"
)

// MarkdownParser parses Markdown documentation files with optional
// YAML frontmatter.
type MarkdownParser struct {
	source  string
	baseURL string
}

var _ Parser = (*MarkdownParser)(nil)

// NewMarkdownParser returns a parser producing documents for the given
// source with URLs under baseURL.
func NewMarkdownParser(source, baseURL string) *MarkdownParser {
	return &MarkdownParser{source: source, baseURL: baseURL}
}

func (p *MarkdownParser) Extensions() []string {
	return []string{".md", ".markdown"}
}

// frontmatter holds the metadata fields we read from the YAML header.
type frontmatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

var (
	mdLiquidTag    = regexp.MustCompile(`\{%.*?%\}`)
	mdLiquidVar    = regexp.MustCompile(`\{\{.*?\}\}`)
	mdHTMLComment  = regexp.MustCompile(`(?s)<!--.*?-->`)
	mdHTMLTag      = regexp.MustCompile(`<[^>]+>`)
	mdImage        = regexp.MustCompile(`!\[([^\]]*)\]\([^\)]+\)`)
	mdLink         = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	mdCodeFence    = regexp.MustCompile("(?s)```.*?```")
	mdInlineCode   = regexp.MustCompile("`[^`]+`")
	mdHeaderMarker = regexp.MustCompile(`(?m)^#+\s+`)
	mdHeading      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	mdURLSuffix    = regexp.MustCompile(`\.(md|markdown)$`)
)

// ParseFile extracts metadata and cleaned text content from a Markdown
// file. Title and description come from the frontmatter when present;
// the title falls back to the first level-one heading, then the file
// name.
func (p *MarkdownParser) ParseFile(path, basePath string) (*store.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, airerrors.New(airerrors.ErrCodeParseFailed, "failed to read markdown file", err).
			WithDetail("path", path)
	}

	relPath, err := relativePath(path, basePath)
	if err != nil {
		return nil, airerrors.New(airerrors.ErrCodeParseFailed, "failed to compute relative path", err).
			WithDetail("path", path)
	}

	meta, body := splitFrontmatter(string(raw))

	title := meta.Title
	if title == "" {
		if m := mdHeading.FindStringSubmatch(body); m != nil {
			title = strings.TrimSpace(m[1])
		}
	}
	if title == "" {
		title = fallbackTitle(path)
	}

	return &store.Document{
		Source:      p.source,
		Path:        relPath,
		Title:       title,
		Description: meta.Description,
		Section:     sectionFromPath(relPath),
		Content:     cleanMarkdown(body),
		URL:         p.baseURL + "/" + mdURLSuffix.ReplaceAllString(relPath, ".html"),
	}, nil
}

// splitFrontmatter separates a leading YAML frontmatter block (between
// "---" fences) from the document body. Malformed frontmatter is
// treated as body text.
func splitFrontmatter(src string) (frontmatter, string) {
	var meta frontmatter

	if !strings.HasPrefix(src, "---\n") && !strings.HasPrefix(src, "---\r\n") {
		return meta, src
	}

	rest := src[strings.IndexByte(src, '\n')+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta, src
	}

	block := rest[:end]
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\r")
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return frontmatter{}, src
	}
	return meta, body
}

// cleanMarkdown strips markup so only prose reaches the index. Link and
// image text survives, code blocks do not.
func cleanMarkdown(content string) string {
	content = mdLiquidTag.ReplaceAllString(content, "")
	content = mdLiquidVar.ReplaceAllString(content, "")
	content = mdHTMLComment.ReplaceAllString(content, "")
	content = mdHTMLTag.ReplaceAllString(content, "")
	content = mdImage.ReplaceAllString(content, "$1")
	content = mdLink.ReplaceAllString(content, "$1")
	content = mdCodeFence.ReplaceAllString(content, "")
	content = mdInlineCode.ReplaceAllString(content, "")
	content = mdHeaderMarker.ReplaceAllString(content, "")
	return collapseWhitespace(content)
}
