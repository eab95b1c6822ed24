package models

import "time"

// Performance levels produced by the aggregator.
const (
	LevelStrongHire = "Strong Hire"
	LevelHire       = "Hire"
	LevelBorderline = "Borderline"
	LevelNoHire     = "No Hire"
)

// ReportScores holds the numeric sub-scores of a final report. Sub-scores
// are bounded 0-10, the integrity score 0-100.
type ReportScores struct {
	TechnicalCorrectness int `json:"technical_correctness"`
	ProblemSolving       int `json:"problem_solving"`
	Reasoning            int `json:"reasoning"`
	CodeQuality          int `json:"code_quality"`
	Communication        int `json:"communication"`
	IntegrityScore       int `json:"integrity_score"`
	FinalScorePercent    int `json:"final_score_percent"`
}

// FinalReport is produced exactly once per session, at normal end or forced
// termination, and is immutable afterward.
type FinalReport struct {
	Summary                   string            `json:"summary"`
	Scores                    ReportScores      `json:"scores"`
	Justifications            map[string]string `json:"justifications"`
	ActionableRecommendations []string          `json:"actionable_recommendations"`
	PerformanceLevel          string            `json:"performance_level"`
	ProctorWarnings           []string          `json:"proctor_warnings"`
	BrowserWarnings           []BrowserWarning  `json:"browser_warnings"`
}

// ReportRecord is the persisted form of a final report.
type ReportRecord struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	SessionID     string `gorm:"index" json:"session_id"`
	JoinCode      string `json:"join_code"`
	CandidateName string `json:"candidate_name"`
	// ReportJSON carries the full FinalReport, serialized; the scalar
	// columns below exist for querying.
	ReportJSON       string    `json:"report_json"`
	FinalScore       int       `json:"final_score"`
	IntegrityScore   int       `json:"integrity_score"`
	PerformanceLevel string    `json:"performance_level"`
	Terminated       bool      `json:"terminated"`
	CreatedAt        time.Time `json:"created_at"`
}
