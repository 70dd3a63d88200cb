package mermaid

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gogentic-mermaid/chatmodel"
	"github.com/effective-security/gogentic-mermaid/pkg/llmutils"
	mermaidrender "github.com/effective-security/gogentic-mermaid/pkg/mermaid"
	"github.com/effective-security/gogentic-mermaid/pkg/schema"
	"github.com/effective-security/gogentic-mermaid/tools"
	"github.com/effective-security/x/values"
)

const (
	ToolName = "render_mermaid"

	// DefaultTitle is the alt text of the image
	DefaultTitle = "Diagram"
)

// ErrSyntaxRequired is returned when the diagram syntax is empty
var ErrSyntaxRequired = errors.New(`Mermaid syntax is required. Pass your diagram code in the "syntax" parameter.`)

const description = `Render a Mermaid diagram to a PNG image. Pass valid Mermaid syntax and get back a markdown image embed.

Supported diagram types: flowchart, sequence, class, state, ER, Gantt, pie, quadrant, requirement, git graph, C4, mindmap, timeline, sankey, XY chart, block.

Example syntax:
` + "```" + `
graph TD
    A[Start] --> B{Decision}
    B -->|Yes| C[Action]
    B -->|No| D[End]
` + "```" + `

Tips:
- Use ` + "`graph TD`" + ` for top-down flowcharts, ` + "`graph LR`" + ` for left-to-right
- Use ` + "`sequenceDiagram`" + ` for sequence diagrams
- Use ` + "`erDiagram`" + ` for entity-relationship diagrams
- Use ` + "`classDiagram`" + ` for class diagrams
- Use ` + "`stateDiagram-v2`" + ` for state diagrams
- Use ` + "`gantt`" + ` for Gantt charts
- Use ` + "`pie`" + ` for pie charts
- Use ` + "`gitgraph`" + ` for git graphs
- Use ` + "`mindmap`" + ` for mind maps`

// RenderRequest represents the tool input.
type RenderRequest struct {
	Syntax string `json:"syntax" yaml:"syntax" jsonschema:"title=Syntax,description=Mermaid diagram syntax. Must be valid Mermaid markup (e.g.\\, starting with graph TD\\, sequenceDiagram\\, erDiagram\\, etc.)."`
	Title  string `json:"title,omitempty" yaml:"title" jsonschema:"title=Title,description=Diagram title used as alt text.,default=Diagram"`
	Width  int    `json:"width,omitempty" yaml:"width" jsonschema:"title=Width,description=Output width in pixels (range: 100-4000).,default=1400"`
	Theme  string `json:"theme,omitempty" yaml:"theme" jsonschema:"title=Theme,description=Mermaid theme.,enum=default,enum=dark,enum=forest,enum=neutral,default=default"`
}

// RenderResult represents the tool output.
type RenderResult struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title" yaml:"title"`
}

// String returns the markdown image embed
func (r *RenderResult) String() string {
	return "![" + r.Title + "](" + r.URL + ")"
}

// Renderer renders the diagram and returns the public path of the image
type Renderer interface {
	Render(ctx context.Context, req *mermaidrender.Request) (string, error)
}

// Tool renders Mermaid diagrams to PNG images
type Tool struct {
	name        string
	description string
	funcParams  any

	renderer Renderer
}

// ensure Tool implements the interfaces
var (
	_ tools.Tool[RenderRequest, RenderResult] = (*Tool)(nil)
	_ tools.MCPTool[RenderRequest]            = (*Tool)(nil)
)

func New(renderer Renderer) (*Tool, error) {
	if renderer == nil {
		return nil, errors.New("renderer is required")
	}
	params, err := schema.ParametersOf[RenderRequest]()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: description,
		funcParams:  params,
		renderer:    renderer,
	}, nil
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

// Run renders the diagram,
// the unsupported theme falls back to the default one.
func (t *Tool) Run(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil {
		return nil, ErrSyntaxRequired
	}
	syntax := llmutils.TrimCodeFence(req.Syntax)
	if syntax == "" {
		return nil, ErrSyntaxRequired
	}

	url, err := t.renderer.Render(ctx, &mermaidrender.Request{
		Syntax: syntax,
		Width:  req.Width,
		Theme:  mermaidrender.NormalizeTheme(req.Theme),
	})
	if err != nil {
		return nil, err
	}

	return &RenderResult{
		URL:   url,
		Title: values.StringsCoalesce(strings.TrimSpace(req.Title), DefaultTitle),
	}, nil
}

// Call executes the tool with JSON input.
// The render failures are returned as the text for the LLM, not as error.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req RenderRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	res, err := t.Run(ctx, &req)
	if err != nil {
		return errorText(err), nil
	}
	return res.String(), nil
}

// RunMCP executes the tool for the MCP server
func (t *Tool) RunMCP(ctx context.Context, req *RenderRequest) (*tools.MCPResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return tools.NewMCPErrorResponse(errorText(err)), nil
	}
	return tools.NewMCPTextResponse(res.String()), nil
}

func (t *Tool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func errorText(err error) string {
	if errors.Is(err, ErrSyntaxRequired) {
		return "Error: " + err.Error()
	}
	return "Error rendering Mermaid diagram: " + err.Error()
}
