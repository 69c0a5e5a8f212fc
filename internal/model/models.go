package model

// Repository represents one observation of a GitHub repository returned by
// the search API. The same repository appears once per search query that hit
// it; aggregation collapses those rows into one per ID.
type Repository struct {
	ID              int64  `json:"id"`
	FullName        string `json:"full_name"`
	Description     string `json:"description"`
	HTMLURL         string `json:"html_url"`
	Language        string `json:"language"`
	Size            int    `json:"size"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	// PushedAt is kept as the raw RFC3339 string from the API. It may be
	// empty or unparseable; such rows are dropped before ranking.
	PushedAt  string `json:"pushed_at"`
	MatchedOn string `json:"matched_on"`

	// Derived during aggregation.
	MatchedList  []string `json:"matched_list,omitempty"`
	MatchedCount int      `json:"matched_count,omitempty"`
	VulIDs       []string `json:"vul_ids,omitempty"`
}

// Match is one (repository, identifier) observation read from a
// per-repository match-listing file.
type Match struct {
	RepoID       int64   `json:"repo_id"`
	RepoFullName string  `json:"repo_full_name"`
	Match        string  `json:"match"`
	MatchWeight  float64 `json:"match_weight"`
	RepoURL      string  `json:"repo_url"`
}

// IdentifierListing groups every Match sharing one normalized identifier.
type IdentifierListing struct {
	Identifier string
	Matches    []Match
}
