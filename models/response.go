package models

// AnalyzeResponse carries both renderings of one answer. DocumentBuffer is the
// base64 encoding of the binary document.
type AnalyzeResponse struct {
	FormattedAnswer string       `json:"formattedAnswer"`
	Citations       CitationList `json:"citations"`
	DocumentBuffer  string       `json:"documentBuffer"`
	DocumentType    string       `json:"documentType"`
	DocumentName    string       `json:"documentName"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
