package models

// TokenResponse is the body returned by POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserRole    string `json:"user_role,omitempty"`
}

// Registration is the body of POST /register. Role is one of the roles the
// backend accepts ("Patient", "Doctor").
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// DietQuestion is the body of POST /diet/consult. ReportText is optional
// context taken from a previously analyzed report.
type DietQuestion struct {
	Question   string `json:"question"`
	ReportText string `json:"report_text,omitempty"`
}

// DietAnswer is the response of POST /diet/consult.
type DietAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ChatRequest and ChatResponse are the bodies of POST /chatbot.
type ChatRequest struct {
	Query string `json:"query"`
}

type ChatResponse struct {
	Response string `json:"response"`
}
