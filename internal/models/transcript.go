package models

// Transcript roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Transcript entry kinds. Chat entries are the only ones replayed to the
// interviewer as conversation history; hints and stuck notices are side
// channels.
const (
	EntryKindChat  = "chat"
	EntryKindHint  = "hint"
	EntryKindStuck = "stuck"
)

// TranscriptEntry is one unit of the interview conversation. Entries are
// append-only and never mutated after insertion.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Kind    string `json:"kind"`
}

// ChatMessage is the wire shape of a history entry sent to the chat endpoint.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatHistory filters a transcript down to the chat-only entries in wire form.
func ChatHistory(entries []TranscriptEntry) []ChatMessage {
	history := make([]ChatMessage, 0, len(entries))
	for _, e := range entries {
		if e.Kind != EntryKindChat {
			continue
		}
		history = append(history, ChatMessage{Role: e.Role, Content: e.Content})
	}
	return history
}
