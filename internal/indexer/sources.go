package indexer

import (
	"fmt"

	airerrors "github.com/airdocs-mcp/airdocs/internal/errors"
	"github.com/airdocs-mcp/airdocs/internal/parser"
	"github.com/airdocs-mcp/airdocs/internal/store"
)

// Source describes one upstream documentation repository.
type Source struct {
	Name     string
	RepoURL  string
	DocsPath string
	BaseURL  string

	newParser func() parser.Parser
}

// Parser returns a fresh parser configured for this source.
func (s Source) Parser() parser.Parser {
	return s.newParser()
}

// Registry of upstream sources. Order matters for reporting.
var sources = []Source{
	{
		Name:     store.SourceCore,
		RepoURL:  "https://github.com/apache/airflow.git",
		DocsPath: "docs/apache-airflow",
		BaseURL:  "https://airflow.apache.org/docs/apache-airflow/stable",
		newParser: func() parser.Parser {
			return parser.NewRSTParser(store.SourceCore,
				"https://airflow.apache.org/docs/apache-airflow/stable")
		},
	},
	{
		Name:     store.SourceClient,
		RepoURL:  "https://github.com/apache/airflow-client-python.git",
		DocsPath: "docs",
		BaseURL:  "https://airflow.apache.org/docs/apache-airflow-client",
		newParser: func() parser.Parser {
			return parser.NewMarkdownParser(store.SourceClient,
				"https://airflow.apache.org/docs/apache-airflow-client")
		},
	},
}

// Sources returns the registered sources in indexing order.
func Sources() []Source {
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}

// LookupSource finds a source by name.
func LookupSource(name string) (Source, error) {
	for _, s := range sources {
		if s.Name == name {
			return s, nil
		}
	}
	return Source{}, airerrors.New(airerrors.ErrCodeInvalidSource,
		fmt.Sprintf("unknown source: %s", name), nil).
		WithDetail("source", name).
		WithSuggestion(fmt.Sprintf("valid sources: %s, %s", store.SourceCore, store.SourceClient))
}
