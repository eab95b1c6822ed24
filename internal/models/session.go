package models

import "time"

// Interview phases tracked server-side.
const (
	PhaseWarmup = "warmup"
	PhaseCoding = "coding"
	PhaseWrapUp = "wrapup"
)

// CandidateProfile describes who is being interviewed.
type CandidateProfile struct {
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	ExperienceYears int      `json:"experience_years"`
	Languages       []string `json:"languages"`
	InterviewTopic  string   `json:"interview_topic"`
	DifficultyLevel string   `json:"difficulty_level"`
}

// Problem is the coding problem a session is conducted against.
type Problem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Difficulty  string `json:"difficulty"`
}

// AgentEvaluations collects the background evaluator outputs gathered over
// the course of a session. Any field may stay empty if the evaluator never
// ran or failed.
type AgentEvaluations struct {
	CodeJudge     string `json:"code_judge,omitempty"`
	CommEval      string `json:"comm_eval,omitempty"`
	ReasoningEval string `json:"reasoning_eval,omitempty"`
}

// LiveSession is the server-side state of one in-progress interview.
type LiveSession struct {
	ID              string           `json:"id"`
	JoinCode        string           `json:"join_code"`
	Candidate       CandidateProfile `json:"candidate"`
	ResumeText      string           `json:"resume_text,omitempty"`
	Phase           string           `json:"phase"`
	Transcripts     []string         `json:"transcripts"`
	LatestCode      string           `json:"latest_code"`
	Language        string           `json:"language"`
	BrowserWarnings []BrowserWarning `json:"browser_warnings"`
	ProctorWarnings []string         `json:"proctor_warnings"`
	Evaluations     AgentEvaluations `json:"evaluations"`
	CreatedAt       time.Time        `json:"created_at"`
	LastSeenAt      time.Time        `json:"last_seen_at"`
}
