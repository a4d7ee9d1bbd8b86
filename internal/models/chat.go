package models

// Speaker roles as sent by the browser widget.
const (
	RoleUser      = "user"
	RoleAssistant = "ai"
)

// Provider-side roles understood by Gemini.
const (
	ProviderRoleUser  = "user"
	ProviderRoleModel = "model"
)

// ChatTurn is one entry of the transcript kept by the chat widget.
type ChatTurn struct {
	Role string `json:"role"` // "user" or "ai"
	Text string `json:"text"`
}

// ChatRequest is the payload sent to the chat endpoint. Message is the
// newest user utterance and is not yet part of History.
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history"`
}

// ChatResponse carries both successful replies and branded failure notices.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ProviderTurn is a history entry in the shape the provider expects.
type ProviderTurn struct {
	Speaker string
	Content string
}
