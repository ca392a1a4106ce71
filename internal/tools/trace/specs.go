package trace

import (
	"context"
	"encoding/json"

	"github.com/spectrace/spectrace/internal/session"
)

// SpecsTool lists every configured spec with its live build status.
type SpecsTool struct {
	sess *session.Session
}

type SpecsResult struct {
	Specs []session.Status `json:"specs"`
}

func (t *SpecsTool) Name() string { return "specs" }

func (t *SpecsTool) Description() string {
	return "List configured specs with generation and coverage status"
}

func (t *SpecsTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return &SpecsResult{Specs: t.sess.StatusAll()}, nil
}
