package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsMermaidRendersSucceeded is base for counter metric for successful diagram renders
	StatsMermaidRendersSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_mermaid_renders_succeeded",
		Help:         "stats_mermaid_renders_succeeded provides total diagrams rendered",
		RequiredTags: []string{"theme"},
	}

	StatsMermaidRendersFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_mermaid_renders_failed",
		Help:         "stats_mermaid_renders_failed provides total diagram renders failed",
		RequiredTags: []string{"reason"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}
)

// Perf
var (
	PerfMermaidRender = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_mermaid_render",
		Help:         "perf_mermaid_render provides duration of diagram render",
		RequiredTags: []string{"theme"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfMermaidRender,
	&PerfToolCall,
	&StatsMermaidRendersFailed,
	&StatsMermaidRendersSucceeded,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
}
