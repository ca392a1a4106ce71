package trace

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spectrace/spectrace/internal/coverage"
	"github.com/spectrace/spectrace/internal/manifest"
	"github.com/spectrace/spectrace/internal/session"
	"github.com/spectrace/spectrace/pkg/protocol"
)

// MatrixTool returns the traceability matrix of one spec, optionally
// filtered by rule-id prefix, requirement level, or coverage gaps.
type MatrixTool struct {
	sess *session.Session
}

func (t *MatrixTool) Name() string { return "matrix" }

func (t *MatrixTool) Description() string {
	return "Get the rule-to-references traceability matrix for a spec"
}

func (t *MatrixTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var req protocol.MatrixParams
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	gen, err := currentGeneration(t.sess, req.Spec)
	if err != nil {
		return nil, err
	}

	filter := coverage.MatrixFilter{
		Prefix:            req.Prefix,
		UncoveredOnly:     req.UncoveredOnly,
		MissingVerifyOnly: req.MissingVerifyOnly,
	}
	if req.Level != "" {
		level, err := manifest.ParseLevel(req.Level)
		if err != nil {
			return nil, err
		}
		filter.Level = level
	}

	return gen.Result.Matrix.Filter(filter), nil
}
