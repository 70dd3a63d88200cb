package tools

import (
	"context"

	"github.com/effective-security/gogentic-mermaid/pkg/llmutils"
)

// McpServerRegistrator is implemented by MCP servers,
// the handler is a func(context.Context, *I) (*MCPResponse, error)
type McpServerRegistrator interface {
	RegisterTool(name string, description string, handler any) error
}

// ITool is a tool for the llm agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error.
	Call(context.Context, string) (string, error)
}

// Callback receives the tool events
type Callback interface {
	OnToolStart(ctx context.Context, tool ITool, input string)
	OnToolEnd(ctx context.Context, tool ITool, input string, output string)
	OnToolError(ctx context.Context, tool ITool, input string, err error)
	OnToolNotFound(ctx context.Context, toolName string)
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// IMCPTool is an interface that extends ITool to include functionality for
// registering the tool with an MCP server.
type IMCPTool interface {
	ITool
	RegisterMCP(registrator McpServerRegistrator) error
}

type MCPTool[I any] interface {
	IMCPTool
	RunMCP(context.Context, *I) (*MCPResponse, error)
}

// MCPContent is a content item of the MCP tool response
type MCPContent struct {
	Type     string `json:"type" yaml:"type"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
}

// MCPResponse is the MCP tool response
type MCPResponse struct {
	Content []*MCPContent `json:"content" yaml:"content"`
	IsError bool          `json:"isError,omitempty" yaml:"isError,omitempty"`
}

// NewMCPTextResponse returns response with a single text content
func NewMCPTextResponse(text string) *MCPResponse {
	return &MCPResponse{
		Content: []*MCPContent{{Type: "text", Text: text}},
	}
}

// NewMCPErrorResponse returns error response with a single text content
func NewMCPErrorResponse(text string) *MCPResponse {
	r := NewMCPTextResponse(text)
	r.IsError = true
	return r
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns the tool names and descriptions for the prompt
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
