package chatmodel

import (
	"context"

	"github.com/effective-security/x/values"
	"github.com/google/uuid"
)

// ChatContext identifies the conversation a tool call belongs to
type ChatContext interface {
	GetChatID() string
	// RequestID returns the ID of the transport request carrying the call,
	// or empty if the call did not come over a transport
	RequestID() string
}

type chatContext struct {
	chatID    string
	requestID string
}

func (c *chatContext) GetChatID() string {
	return c.chatID
}

func (c *chatContext) RequestID() string {
	return c.requestID
}

// NewChatContext returns ChatContext,
// if chatID is empty, the request ID is used, or a new ID is generated.
func NewChatContext(chatID, requestID string) ChatContext {
	return &chatContext{
		chatID:    values.StringsCoalesce(chatID, requestID, NewChatID()),
		requestID: requestID,
	}
}

type contextKey struct{}

// WithChatContext returns a new context with ChatContext value
func WithChatContext(ctx context.Context, chatCtx ChatContext) context.Context {
	return context.WithValue(ctx, contextKey{}, chatCtx)
}

// GetChatContext returns ChatContext from ctx, or nil
func GetChatContext(ctx context.Context) ChatContext {
	if v, ok := ctx.Value(contextKey{}).(ChatContext); ok {
		return v
	}
	return nil
}

// GetChatID returns the chat ID from ctx, or empty string
func GetChatID(ctx context.Context) string {
	if v := GetChatContext(ctx); v != nil {
		return v.GetChatID()
	}
	return ""
}

// GetRequestID returns the transport request ID from ctx, or empty string
func GetRequestID(ctx context.Context) string {
	if v := GetChatContext(ctx); v != nil {
		return v.RequestID()
	}
	return ""
}

// NewChatID generates a new random chat ID
func NewChatID() string {
	return uuid.NewString()
}
