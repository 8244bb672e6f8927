package orchestrator

import "context"

// Button is one inline keyboard button: a visible label and the opaque
// callback token delivered back when pressed.
type Button struct {
	Label string
	Token string
}

// Responder is the outbound chat transport. Message rendering and delivery
// retries belong to the implementation; the orchestrator only decides what
// to say and which tokens to embed.
type Responder interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]Button) error
}
