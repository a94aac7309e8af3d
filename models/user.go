package models

// User is the authenticated identity stored in a session.
type User struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// AnswerRequest is what the language model collaborator needs to produce a
// cited answer.
type AnswerRequest struct {
	Question  string
	Context   string
	Model     string
	Citations []Citation
}
