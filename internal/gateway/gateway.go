package gateway

import "context"

// Handler processes one inbound chat turn for a session.
type Handler interface {
	HandleMessage(ctx context.Context, sessionID string, text string) (string, error)
}

// Messenger defines the interface for communication gateways (Telegram, Discord, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}
