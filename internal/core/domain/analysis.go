package domain

import "time"

// ReportKind distinguishes the quick analysis from the paid long-form report.
type ReportKind string

const (
	ReportBasic   ReportKind = "basic"
	ReportPremium ReportKind = "premium"
)

// NarrativeResult is the raw text returned by the narrative provider.
type NarrativeResult struct {
	Text     string     `json:"text"`
	Language string     `json:"language"`
	Kind     ReportKind `json:"kind"`
}

// Section is one displayable unit of a narrative.
type Section struct {
	Header string   `json:"header"`
	Body   []string `json:"body"`
}

// Analysis pairs a Region with its snapshot and narrative. Snapshot is either
// fully present or nil (search skipped or failed).
type Analysis struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Region    Region            `json:"region"`
	Center    GeoPoint          `json:"center"`
	Snapshot  *BusinessSnapshot `json:"snapshot,omitempty"`
	Narrative NarrativeResult   `json:"narrative"`
	Sections  []Section         `json:"sections"`
	CreatedAt time.Time         `json:"created_at"`
}
