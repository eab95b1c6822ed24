package models

// ErrorResponse is the uniform error body returned by the API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// implements the error interface so Validate() can return it directly
func (e *ErrorResponse) Error() string {
	return e.Message
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	JoinCode  string `json:"join_code,omitempty"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type HintResponse struct {
	Hint string `json:"hint"`
}

type CodeSubmitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SyncCodeResponse struct {
	Status string `json:"status"`
}

type AnalyzeStuckResponse struct {
	IsStuck    bool   `json:"is_stuck"`
	Suggestion string `json:"suggestion,omitempty"`
}

type ReportCheatResponse struct {
	Status string `json:"status"`
}

type EndSessionResponse struct {
	Report FinalReport `json:"report"`
}

// DashboardState is the recruiter view of a live session, keyed by join code.
type DashboardState struct {
	Candidate       CandidateProfile `json:"candidate"`
	Phase           string           `json:"phase"`
	LatestCode      string           `json:"latest_code"`
	Transcripts     []string         `json:"transcripts"`
	BrowserWarnings []BrowserWarning `json:"browser_warnings"`
	ProctorWarnings []string         `json:"proctor_warnings"`
	IsActive        bool             `json:"is_active"`
}

type WatchTokenResponse struct {
	Token string `json:"token"`
}
