package domain

import "time"

// Query is a single job-search request for a map viewport.
type Query struct {
	Bounds         *Bounds  `json:"bounds,omitempty"`
	Term           string   `json:"term,omitempty"`
	Company        string   `json:"company,omitempty"`
	Sort           string   `json:"sort,omitempty"` // field_direction, e.g. "date_desc"
	PWD            bool     `json:"pwd,omitempty"`
	WorkplaceTypes []string `json:"workplaceTypes,omitempty"`
}

// OutcomeKind classifies the result of a query.
type OutcomeKind string

const (
	OutcomeSuccess            OutcomeKind = "success"
	OutcomeDatasetUnavailable OutcomeKind = "dataset_unavailable"
	OutcomeMissingBounds      OutcomeKind = "missing_bounds"
	OutcomeNoResults          OutcomeKind = "no_results"
	OutcomeAreaTooLarge       OutcomeKind = "area_too_large"
)

// Outcome is the typed result of building a job-search URL. Only
// OutcomeSuccess carries a URL; every other kind carries a user-facing message.
type Outcome struct {
	Kind    OutcomeKind `json:"outcome"`
	URL     string      `json:"url,omitempty"`
	Message string      `json:"message,omitempty"`
	Matches int         `json:"matches"`
	Limit   int         `json:"limit,omitempty"`
	Region  string      `json:"region,omitempty"`
}

// OK reports whether the outcome carries a URL.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// SearchEvent is published after every query. ViewportKm is the viewport
// diagonal and stays zero when bounds were missing.
type SearchEvent struct {
	Time       time.Time   `json:"time"`
	Outcome    OutcomeKind `json:"outcome"`
	Matches    int         `json:"matches"`
	Region     string      `json:"region,omitempty"`
	HasTerm    bool        `json:"has_term"`
	Cached     bool        `json:"cached"`
	ViewportKm float64     `json:"viewport_km,omitempty"`
}
