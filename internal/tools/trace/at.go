package trace

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spectrace/spectrace/internal/manifest"
	"github.com/spectrace/spectrace/internal/session"
	"github.com/spectrace/spectrace/pkg/protocol"
)

// AtTool answers "which rules does this code touch": the rules referenced
// within a file's line range, each returned once.
type AtTool struct {
	sess *session.Session
}

type AtResult struct {
	File  string          `json:"file"`
	Rules []manifest.Rule `json:"rules"`
}

func (t *AtTool) Name() string { return "at" }

func (t *AtTool) Description() string {
	return "List the rules referenced at a file location or line range"
}

func (t *AtTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var req protocol.AtParams
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if req.File == "" {
		return nil, fmt.Errorf("file is required")
	}
	if req.Line <= 0 {
		return nil, fmt.Errorf("line must be positive")
	}

	end := req.EndLine
	if end == 0 {
		end = req.Line
	}
	if end < req.Line {
		return nil, fmt.Errorf("end_line %d precedes line %d", end, req.Line)
	}

	gen, err := currentGeneration(t.sess, req.Spec)
	if err != nil {
		return nil, err
	}

	rules := gen.Result.RulesAt(req.File, req.Line, end)
	if rules == nil {
		rules = []manifest.Rule{}
	}
	return &AtResult{File: req.File, Rules: rules}, nil
}
