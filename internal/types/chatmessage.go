package types

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is a single conversation turn. Histories are ephemeral and
// session-local: they live in the conversation store, never in Postgres.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
