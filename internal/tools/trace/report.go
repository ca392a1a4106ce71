package trace

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spectrace/spectrace/internal/coverage"
	"github.com/spectrace/spectrace/internal/session"
	"github.com/spectrace/spectrace/pkg/protocol"
)

// ReportTool returns the current coverage report of one spec without
// triggering a rebuild.
type ReportTool struct {
	sess *session.Session
}

type ReportResult struct {
	Generation uint64           `json:"generation"`
	Percent    float64          `json:"coverage_percent"`
	Report     *coverage.Report `json:"report"`
	Warnings   []string         `json:"warnings,omitempty"`
}

func (t *ReportTool) Name() string { return "report" }

func (t *ReportTool) Description() string {
	return "Get the current coverage report for a spec"
}

func (t *ReportTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var req protocol.ReportParams
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	gen, err := currentGeneration(t.sess, req.Spec)
	if err != nil {
		return nil, err
	}

	return &ReportResult{
		Generation: gen.Number,
		Percent:    gen.Result.Report.Percent(),
		Report:     gen.Result.Report,
		Warnings:   gen.Warnings,
	}, nil
}
