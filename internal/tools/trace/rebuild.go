package trace

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spectrace/spectrace/internal/coverage"
	"github.com/spectrace/spectrace/internal/session"
	"github.com/spectrace/spectrace/pkg/protocol"
)

// RebuildTool forces a synchronous rebuild of one spec.
type RebuildTool struct {
	sess *session.Session
}

type RebuildResult struct {
	Generation uint64           `json:"generation"`
	DurationMS int64            `json:"duration_ms"`
	Report     *coverage.Report `json:"report"`
}

func (t *RebuildTool) Name() string { return "rebuild" }

func (t *RebuildTool) Description() string {
	return "Rebuild a spec's coverage state and return the fresh report"
}

func (t *RebuildTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var req protocol.RebuildParams
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if req.Spec == "" {
		return nil, fmt.Errorf("spec is required")
	}

	gen, err := t.sess.Rebuild(req.Spec)
	if err != nil {
		return nil, err
	}

	return &RebuildResult{
		Generation: gen.Number,
		DurationMS: gen.Duration.Milliseconds(),
		Report:     gen.Result.Report,
	}, nil
}
