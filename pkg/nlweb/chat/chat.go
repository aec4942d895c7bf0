// Package chat defines the chat-model contract consumed by the query core
// and the resilience wrappers applied to it.
//
// The pipeline only depends on ChatClient; the HTTP implementation speaks
// the OpenAI-compatible completion protocol. Summarize and Generate modes
// degrade to List when the client is unavailable, so wrappers translate hard
// failures into nlweb.ErrChatUnavailable for the generator to detect.
package chat

import "context"

// Message roles understood by chat clients.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn handed to the chat client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ChatClient completes a conversation into a single assistant reply.
// Implementations must be safe for concurrent use and must honor context
// cancellation promptly.
type ChatClient interface {
	// Complete returns the model's reply to the given messages.
	Complete(ctx context.Context, messages []Message) (string, error)
}
