package mcp

// SearchInput defines the input schema for the search_documentation tool.
type SearchInput struct {
	Query   string `json:"query" jsonschema:"the search query string"`
	Source  string `json:"source,omitempty" jsonschema:"optional source filter: airflow-core or airflow-python-client"`
	Section string `json:"section,omitempty" jsonschema:"optional section filter, e.g. Core Concepts"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10, max 50"`
}

// SearchOutput defines the output schema for the search_documentation tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results" jsonschema:"ranked search results"`
}

// SearchResultOutput is a single ranked hit.
type SearchResultOutput struct {
	Title   string  `json:"title" jsonschema:"document title"`
	Source  string  `json:"source" jsonschema:"documentation source"`
	Path    string  `json:"path" jsonschema:"document path for read_documentation"`
	Section string  `json:"section" jsonschema:"documentation section"`
	URL     string  `json:"url" jsonschema:"link to the published page"`
	Snippet string  `json:"snippet" jsonschema:"matched excerpt with highlighted terms"`
	Score   float64 `json:"score" jsonschema:"relevance score, higher is better"`
}

// ReadInput defines the input schema for the read_documentation tool.
type ReadInput struct {
	Source string `json:"source" jsonschema:"documentation source: airflow-core or airflow-python-client"`
	Path   string `json:"path" jsonschema:"relative document path from search results"`
}

// ReadOutput defines the output schema for the read_documentation tool.
type ReadOutput struct {
	Title       string `json:"title" jsonschema:"document title"`
	Source      string `json:"source" jsonschema:"documentation source"`
	Section     string `json:"section" jsonschema:"documentation section"`
	URL         string `json:"url" jsonschema:"link to the published page"`
	Description string `json:"description,omitempty" jsonschema:"short document description"`
	Content     string `json:"content" jsonschema:"full document text"`
}

// SectionsInput defines the input schema for the get_sections tool.
type SectionsInput struct {
	Source string `json:"source,omitempty" jsonschema:"optional source filter"`
}

// SectionsOutput defines the output schema for the get_sections tool.
type SectionsOutput struct {
	Sections []string `json:"sections" jsonschema:"available section names"`
}

// StatsInput defines the input schema for the get_statistics tool (no parameters).
type StatsInput struct{}

// StatsOutput defines the output schema for the get_statistics tool.
type StatsOutput struct {
	Sources map[string]int `json:"sources" jsonschema:"document count per source"`
	Total   int            `json:"total" jsonschema:"total indexed documents"`
}
