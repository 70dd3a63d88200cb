// Package tools defines the Tool interface for LLM agents, including registration, parameter schema, and MCP integration.
// Tools are grouped by providers in the Registry, and invoked with callbacks and metrics.
package tools
