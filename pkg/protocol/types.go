// Package protocol defines the JSON-RPC surface the spectrace daemon
// exposes to front ends (CLI, dashboards, editor integrations).
package protocol

// Method names. Each maps to a registered query tool.
const (
	MethodRebuild = "trace/rebuild"
	MethodReport  = "trace/report"
	MethodMatrix  = "trace/matrix"
	MethodImpact  = "trace/impact"
	MethodAt      = "trace/at"
	MethodSpecs   = "trace/specs"
)

// JSON-RPC error codes, matching the conventional assignments.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

type RebuildParams struct {
	Spec string `json:"spec"`
}

type ReportParams struct {
	Spec string `json:"spec"`
}

type MatrixParams struct {
	Spec              string `json:"spec"`
	Prefix            string `json:"prefix,omitempty"`
	Level             string `json:"level,omitempty"`
	UncoveredOnly     bool   `json:"uncovered_only,omitempty"`
	MissingVerifyOnly bool   `json:"missing_verify_only,omitempty"`
}

type ImpactParams struct {
	Spec   string `json:"spec"`
	RuleID string `json:"rule_id"`
}

type AtParams struct {
	Spec string `json:"spec"`
	File string `json:"file"`
	Line int    `json:"line"`
	// EndLine makes the query an inclusive range. Zero means a single
	// line query.
	EndLine int `json:"end_line,omitempty"`
}

type SpecsParams struct{}
