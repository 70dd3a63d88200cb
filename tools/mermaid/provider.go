package mermaid

import (
	"github.com/effective-security/gogentic-mermaid/tools"
)

// AppName is the name of the tool provider
const AppName = "mermaid"

const icon = "ph:graph"

// Provider provides the Mermaid tools
type Provider struct {
	tool *Tool
}

var _ tools.Provider = (*Provider)(nil)

func NewProvider(renderer Renderer) (*Provider, error) {
	tool, err := New(renderer)
	if err != nil {
		return nil, err
	}
	return &Provider{tool: tool}, nil
}

// Register creates the provider and adds it to the registry
func Register(registry *tools.Registry, renderer Renderer) error {
	p, err := NewProvider(renderer)
	if err != nil {
		return err
	}
	return registry.Register(p)
}

func (p *Provider) AppName() string {
	return AppName
}

func (p *Provider) AppMeta() tools.AppMeta {
	return tools.AppMeta{
		Label:       "diagrams, flowcharts, sequences",
		Description: "Mermaid diagram rendering",
		Icon:        icon,
		Logo:        icon,
	}
}

func (p *Provider) Tools() []tools.ITool {
	return []tools.ITool{p.tool}
}

func (p *Provider) ToolsInfo() []tools.ToolInfo {
	return []tools.ToolInfo{
		{
			Name:        ToolName,
			DisplayName: "Render Mermaid",
			Type:        "write",
			Description: "Render Mermaid diagram syntax (flowcharts, sequence, ER, class, state, Gantt, and more) to a PNG image.",
			Icon:        icon,
		},
	}
}

// IsIntegration returns true, the renderer is an external application
func (p *Provider) IsIntegration() bool {
	return true
}
