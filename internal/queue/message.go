package queue

import (
	"context"
	"encoding/json"
)

// MessageVersion is the current webhook job schema version.
const MessageVersion = 1

// Message is a webhook dispatch job.
type Message struct {
	Type       string `json:"type"`
	DocumentID string `json:"documentId"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// Client enqueues webhook dispatch jobs. SQSClient is the production
// implementation; tests substitute their own.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
