// Package chat contains the conversation transcript model shared by the
// kitchen session and the AI boundary.
package chat

// Sender identifies who authored a chat message.
type Sender string

const (
	// SenderUser marks a message typed by the user.
	SenderUser Sender = "user"
	// SenderAI marks a message produced by the assistant, including
	// synthetic messages the application fabricates (the welcome
	// message after analysis, the apology fallback on failure).
	SenderAI Sender = "ai"
)

// Message is one entry in a conversation transcript.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Transcript is an append-only, chronologically ordered sequence of
// messages. Order defines both rendering order and the conversational
// context sent to the AI on each turn.
type Transcript []Message

// Append returns the transcript extended with the given message.
func (t Transcript) Append(sender Sender, text string) Transcript {
	return append(t, Message{Sender: sender, Text: text})
}

// Clone returns a copy so snapshots do not alias the live transcript.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	return append(Transcript(nil), t...)
}
