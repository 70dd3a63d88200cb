package tools

import (
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// AppMeta describes the tool provider in the UI
type AppMeta struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	Logo        string `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// ToolInfo describes the tool in the UI
type ToolInfo struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	// Type is read or write
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Provider groups tools of an application
type Provider interface {
	// AppName returns the unique name of the application
	AppName() string
	AppMeta() AppMeta
	Tools() []ITool
	ToolsInfo() []ToolInfo
	// IsIntegration returns true if the provider requires an external account
	IsIntegration() bool
}

// Registry keeps the registered providers and their tools.
// It is safe for concurrent use.
type Registry struct {
	lock        sync.RWMutex
	providers   []Provider
	toolsByName map[string]ITool
	toolsNames  []string
}

// NewRegistry returns an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		toolsByName: map[string]ITool{},
	}
}

// Register adds the provider and its tools,
// the tool names are case insensitive and must be unique across providers
func (r *Registry) Register(p Provider) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	name := p.AppName()
	if name == "" {
		return errors.New("provider name is required")
	}
	for _, existing := range r.providers {
		if strings.EqualFold(existing.AppName(), name) {
			return errors.Newf("provider already registered: %s", name)
		}
	}

	list := p.Tools()
	seen := map[string]bool{}
	for _, tool := range list {
		key := strings.ToLower(tool.Name())
		if r.toolsByName[key] != nil || seen[key] {
			return errors.Newf("tool already registered: %s", tool.Name())
		}
		seen[key] = true
	}

	r.providers = append(r.providers, p)
	for _, tool := range list {
		r.toolsByName[strings.ToLower(tool.Name())] = tool
		r.toolsNames = append(r.toolsNames, tool.Name())
	}
	return nil
}

// Provider returns the provider by name, or nil
func (r *Registry) Provider(name string) Provider {
	r.lock.RLock()
	defer r.lock.RUnlock()
	for _, p := range r.providers {
		if strings.EqualFold(p.AppName(), name) {
			return p
		}
	}
	return nil
}

// Providers returns the registered providers in the order of registration
func (r *Registry) Providers() []Provider {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return slices.Clone(r.providers)
}

// Tool returns the tool by name, or nil
func (r *Registry) Tool(name string) ITool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.toolsByName[strings.ToLower(name)]
}

// Tools returns all tools in the order of registration
func (r *Registry) Tools() []ITool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	list := make([]ITool, 0, len(r.toolsNames))
	for _, name := range r.toolsNames {
		list = append(list, r.toolsByName[strings.ToLower(name)])
	}
	return list
}

// Names returns the tool names in the order of registration
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return slices.Clone(r.toolsNames)
}

// RegisterMCP registers the tools that support MCP with the server
func (r *Registry) RegisterMCP(registrator McpServerRegistrator) error {
	for _, tool := range r.Tools() {
		if mt, ok := tool.(IMCPTool); ok {
			if err := mt.RegisterMCP(registrator); err != nil {
				return errors.WithMessagef(err, "failed to register MCP tool %s", tool.Name())
			}
		}
	}
	return nil
}
