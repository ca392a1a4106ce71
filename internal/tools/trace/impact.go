package trace

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spectrace/spectrace/internal/scanner"
	"github.com/spectrace/spectrace/internal/session"
	"github.com/spectrace/spectrace/pkg/protocol"
)

// ImpactTool returns every reference to one rule: the impact set touched
// when that rule changes.
type ImpactTool struct {
	sess *session.Session
}

type ImpactResult struct {
	RuleID     string              `json:"rule_id"`
	References []scanner.Reference `json:"references"`
}

func (t *ImpactTool) Name() string { return "impact" }

func (t *ImpactTool) Description() string {
	return "List every reference to a rule in location order"
}

func (t *ImpactTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var req protocol.ImpactParams
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if req.RuleID == "" {
		return nil, fmt.Errorf("rule_id is required")
	}

	gen, err := currentGeneration(t.sess, req.Spec)
	if err != nil {
		return nil, err
	}

	refs := gen.Result.Impact(req.RuleID)
	if refs == nil {
		// An unreferenced rule is an empty impact set, not an error.
		refs = []scanner.Reference{}
	}
	return &ImpactResult{RuleID: req.RuleID, References: refs}, nil
}
