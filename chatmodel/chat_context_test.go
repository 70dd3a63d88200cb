package chatmodel_test

import (
	"context"
	"testing"

	"github.com/effective-security/gogentic-mermaid/chatmodel"
	"github.com/stretchr/testify/assert"
)

func TestNewChatContext(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		name      string
		chatID    string
		requestID string
		expID     string
	}{
		{name: "chat_id", chatID: "chat-123", requestID: "req-1", expID: "chat-123"},
		{name: "request_id", chatID: "", requestID: "req-1", expID: "req-1"},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			c := chatmodel.NewChatContext(tc.chatID, tc.requestID)
			assert.Equal(t, tc.expID, c.GetChatID())
			assert.Equal(t, tc.requestID, c.RequestID())
		})
	}

	c1 := chatmodel.NewChatContext("", "")
	c2 := chatmodel.NewChatContext("", "")
	assert.NotEmpty(t, c1.GetChatID())
	assert.NotEqual(t, c1.GetChatID(), c2.GetChatID())
	assert.Empty(t, c1.RequestID())
}

func TestContextPlumbing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assert.Nil(t, chatmodel.GetChatContext(ctx))
	assert.Empty(t, chatmodel.GetChatID(ctx))
	assert.Empty(t, chatmodel.GetRequestID(ctx))

	c := chatmodel.NewChatContext("chat1", "req1")
	ctx = chatmodel.WithChatContext(ctx, c)
	assert.Equal(t, c, chatmodel.GetChatContext(ctx))
	assert.Equal(t, "req1", chatmodel.GetRequestID(ctx))
	assert.Equal(t, "chat1", chatmodel.GetChatID(ctx))
}
