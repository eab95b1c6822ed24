package models

// supported problem languages, mirrored by the problem generator UI
var supportedLanguages = map[string]bool{
	"python":     true,
	"javascript": true,
	"java":       true,
	"cpp":        true,
	"go":         true,
}

func validLanguage(lang string) bool {
	return supportedLanguages[lang]
}

type StartSessionRequest struct {
	CandidateName   string   `json:"candidate_name"`
	Role            string   `json:"role"`
	ExperienceYears int      `json:"experience_years"`
	Languages       []string `json:"languages"`
	ProblemTitle    string   `json:"problem_title"`
	DifficultyLevel string   `json:"difficulty_level"`
	ResumeText      string   `json:"resume_text"`
}

// implements the Validator interface
func (r *StartSessionRequest) Validate() error {
	if r.CandidateName == "" {
		return &ErrorResponse{Code: "missing_candidate_name", Message: "Candidate name is required"}
	}
	if r.ProblemTitle == "" {
		return &ErrorResponse{Code: "missing_problem_title", Message: "Problem title is required"}
	}
	if r.DifficultyLevel == "" {
		r.DifficultyLevel = "medium"
	}
	return nil
}

type ChatRequest struct {
	SessionID string        `json:"session_id"`
	Message   string        `json:"message"`
	Code      string        `json:"code"`
	History   []ChatMessage `json:"history"`
}

func (r *ChatRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "Session ID is required"}
	}
	if r.Message == "" {
		return &ErrorResponse{Code: "missing_message", Message: "Message is required"}
	}
	return nil
}

type HintRequest struct {
	Code               string `json:"code"`
	ProblemTitle       string `json:"problem_title"`
	ProblemDescription string `json:"problem_description"`
	Language           string `json:"language"`
}

func (r *HintRequest) Validate() error {
	if r.ProblemTitle == "" {
		return &ErrorResponse{Code: "missing_problem_title", Message: "Problem title is required"}
	}
	if r.Language != "" && !validLanguage(r.Language) {
		return &ErrorResponse{Code: "unsupported_language", Message: "Language not supported"}
	}
	return nil
}

type CodeSubmitRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
	Language  string `json:"language"`
}

func (r *CodeSubmitRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "Session ID is required"}
	}
	if r.Code == "" {
		return &ErrorResponse{Code: "missing_code", Message: "Code field is required"}
	}
	return nil
}

type SyncCodeRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

func (r *SyncCodeRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "Session ID is required"}
	}
	return nil
}

type AnalyzeStuckRequest struct {
	Code                     string `json:"code"`
	ProblemTitle             string `json:"problem_title"`
	ProblemDescription       string `json:"problem_description"`
	Language                 string `json:"language"`
	TimeSinceLastEditSeconds int    `json:"time_since_last_edit_seconds"`
}

func (r *AnalyzeStuckRequest) Validate() error {
	if r.ProblemTitle == "" {
		return &ErrorResponse{Code: "missing_problem_title", Message: "Problem title is required"}
	}
	if r.TimeSinceLastEditSeconds < 0 {
		return &ErrorResponse{Code: "invalid_idle_time", Message: "Idle time must be non-negative"}
	}
	return nil
}

type ReportCheatRequest struct {
	SessionID   string `json:"session_id"`
	WarningType string `json:"warning_type"`
	Message     string `json:"message"`
	IsTerminal  bool   `json:"is_terminal"`
}

func (r *ReportCheatRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "Session ID is required"}
	}
	if r.WarningType == "" {
		return &ErrorResponse{Code: "missing_warning_type", Message: "Warning type is required"}
	}
	return nil
}

type EndSessionRequest struct {
	SessionID string `json:"session_id"`
}

func (r *EndSessionRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Code: "missing_session_id", Message: "Session ID is required"}
	}
	return nil
}
