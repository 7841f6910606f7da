package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (R001-R099)
	// ============================================

	"R001": {
		Category:   CategoryRuntime,
		Message:    "Runaway flush",
		Detail:     "A single flush executed more computations than the configured limit. Two computations are most likely writing signals the other one reads.",
		Suggestion: "Break the write loop, or raise runtime.max_runs_per_flush if the graph is legitimately that large.",
	},
	"R002": {
		Category: CategoryRuntime,
		Message:  "Dependency cycle detected",
		Detail:   "Computations read each other in a cycle, so no topological order exists.",
	},
	"R003": {
		Category:   CategoryRuntime,
		Message:    "Uncaught panic in computation",
		Suggestion: "Register an error handler on an enclosing owner to contain it.",
	},
	"R004": {
		Category: CategoryRuntime,
		Message:  "Option type mismatch",
		Detail:   "A comparator option was applied to a primitive of a different value type.",
	},

	// ============================================
	// Scenario Errors (S001-S099)
	// ============================================

	"S001": {
		Category: CategoryScenario,
		Message:  "Scenario file not readable",
		Detail:   "The scenario file could not be opened.",
	},
	"S002": {
		Category: CategoryScenario,
		Message:  "Invalid scenario YAML",
		Detail:   "The scenario file is not valid YAML or does not match the scenario schema.",
	},
	"S003": {
		Category:   CategoryScenario,
		Message:    "Duplicate node name",
		Suggestion: "Every signal, memo, effect and selector needs a unique name.",
	},
	"S004": {
		Category:   CategoryScenario,
		Message:    "Unknown node reference",
		Suggestion: "Declare nodes before the nodes that read them.",
	},
	"S005": {
		Category:   CategoryScenario,
		Message:    "Unknown operation",
		Suggestion: "Supported operations are sum, product, min, max, copy and neg.",
	},
	"S006": {
		Category:   CategoryScenario,
		Message:    "Unknown node kind",
		Suggestion: "Supported kinds are signal, memo, computed, effect, render-effect, selector and deferred.",
	},
	"S007": {
		Category: CategoryScenario,
		Message:  "Invalid step",
		Detail:   "A step must contain exactly one of set, batch, sleep or dispose.",
	},
	"S008": {
		Category: CategoryScenario,
		Message:  "Invalid deferred timeout",
		Detail:   "Deferred nodes require a positive timeout such as \"50ms\".",
	},
	"S009": {
		Category:   CategoryScenario,
		Message:    "Step target is not a signal",
		Suggestion: "Only signal nodes can be written by set steps.",
	},
	"S010": {
		Category: CategoryScenario,
		Message:  "Expectation failed",
	},
	"S011": {
		Category: CategoryScenario,
		Message:  "Invalid node inputs",
		Detail:   "The number of inputs does not fit the node's operation or kind.",
	},
	"S012": {
		Category: CategoryScenario,
		Message:  "Missing node name",
	},

	// ============================================
	// Config Errors (C001-C099)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Config file not readable",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Invalid config YAML",
		Detail:   "The configuration file is not valid YAML.",
	},
	"C003": {
		Category:   CategoryConfig,
		Message:    "Invalid log level",
		Suggestion: "Use one of debug, info, warn or error.",
	},
	"C004": {
		Category:   CategoryConfig,
		Message:    "Invalid log format",
		Suggestion: "Use text or json.",
	},
	"C005": {
		Category: CategoryConfig,
		Message:  "Invalid runtime limit",
		Detail:   "runtime.max_runs_per_flush must be positive.",
	},
	"C006": {
		Category: CategoryConfig,
		Message:  "Invalid metrics namespace",
		Detail:   "Metric namespaces may only contain letters, digits and underscores.",
	},

	// ============================================
	// CLI Errors (X001-X099)
	// ============================================

	"X001": {
		Category:   CategoryCLI,
		Message:    "Unsupported output format",
		Suggestion: "Use json or yaml.",
	},
	"X002": {
		Category: CategoryCLI,
		Message:  "Output failed",
		Detail:   "Writing the report failed.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
