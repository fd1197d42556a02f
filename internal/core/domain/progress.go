package domain

// SearchProgress reports one finished category query of a catalog build.
type SearchProgress struct {
	SessionID  string `json:"session_id"`
	Term       string `json:"term"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	Found      int    `json:"found"`
	CatalogLen int    `json:"catalog_size"`
	Failed     bool   `json:"failed,omitempty"`
}

// Tier is a user's subscription level.
type Tier string

const (
	TierFree  Tier = "free"
	TierBasic Tier = "basic"
	TierPro   Tier = "pro"
)

// PremiumReportRequest is the input of the premium report workflow.
type PremiumReportRequest struct {
	UserID       string            `json:"user_id"`
	Region       Region            `json:"region"`
	Language     string            `json:"language"`
	Snapshot     *BusinessSnapshot `json:"snapshot,omitempty"`
	BasicSummary string            `json:"basic_summary,omitempty"`
}
