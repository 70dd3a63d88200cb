package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gogentic-mermaid/chatmodel"
	"github.com/effective-security/gogentic-mermaid/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gogentic-mermaid", "tools")

// UnmarshalInputResponse is returned to the LLM when the tool input does not match the schema
const UnmarshalInputResponse = "Failed to unmarshal input, check the JSON schema and try again."

// Invoke calls the tool with the callback and records the tool metrics.
// ErrFailedUnmarshalInput is reported to the callback,
// and UnmarshalInputResponse is returned for the LLM to retry.
func Invoke(ctx context.Context, tool ITool, input string, cb Callback) (string, error) {
	toolName := tool.Name()
	if cb != nil {
		cb.OnToolStart(ctx, tool, input)
	}

	started := time.Now()
	res, err := tool.Call(ctx, input)
	metricskey.PerfToolCall.MeasureSince(started, toolName)

	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, toolName)
		if cb != nil {
			cb.OnToolError(ctx, tool, input, err)
		}
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_call_failed",
			"chat_id", chatmodel.GetChatID(ctx),
			"request_id", chatmodel.GetRequestID(ctx),
			"tool", toolName,
			"err", err.Error(),
		)
		if errors.Is(err, chatmodel.ErrFailedUnmarshalInput) {
			return UnmarshalInputResponse, nil
		}
		return "", errors.WithMessagef(err, "failed to call tool %s", toolName)
	}
	metricskey.StatsToolCallsSucceeded.IncrCounter(1, toolName)

	if cb != nil {
		cb.OnToolEnd(ctx, tool, input, res)
	}
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "tool_call_response",
		"chat_id", chatmodel.GetChatID(ctx),
		"request_id", chatmodel.GetRequestID(ctx),
		"tool", toolName,
		"content_length", len(res),
	)
	return res, nil
}

// Call finds the tool by name and invokes it,
// the response for unknown tool lists the available tools for the LLM to retry.
func (r *Registry) Call(ctx context.Context, toolName, input string, cb Callback) (string, error) {
	tool := r.Tool(toolName)
	if tool == nil {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, toolName)
		if cb != nil {
			cb.OnToolNotFound(ctx, toolName)
		}

		availableTools := strings.Join(r.Names(), ", ")
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_not_found",
			"chat_id", chatmodel.GetChatID(ctx),
			"request_id", chatmodel.GetRequestID(ctx),
			"tool_name", toolName,
			"available_tools", availableTools,
		)
		return fmt.Sprintf("Tool `%s` not found. Please check the tool name and try again with exact match. Available tools: %s", toolName, availableTools), nil
	}
	return Invoke(ctx, tool, input, cb)
}
