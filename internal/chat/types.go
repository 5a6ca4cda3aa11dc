package chat

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one entry in the tutor chat log. The log is append-only; only
// the final model turn is mutated in place while a stream is being
// assembled, and its content grows monotonically until stream end.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DocumentContext is the material a conversation is grounded in.
type DocumentContext struct {
	// Summary is the generated study guide summary, pinned into every
	// conversation.
	Summary string

	// Notes is the original lecture notes text.
	Notes string

	// SourceName is the uploaded file name, or empty for pasted text.
	SourceName string
}
