package models

// AnalyzeRequest is the body of POST /analyze. It is accepted as JSON or as a
// url-encoded form.
type AnalyzeRequest struct {
	Query       string `json:"query" form:"query"`
	Question    string `json:"question,omitempty" form:"question"`
	ModelChoice string `json:"modelChoice,omitempty" form:"modelChoice"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}
