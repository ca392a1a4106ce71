// Package trace implements the query tools backed by a live session:
// rebuild, report, matrix, impact, at, specs.
package trace

import (
	"fmt"

	"github.com/spectrace/spectrace/internal/session"
	"github.com/spectrace/spectrace/internal/tools"
)

// GetTools returns every trace tool bound to the given session.
func GetTools(sess *session.Session) []tools.Tool {
	return []tools.Tool{
		&RebuildTool{sess: sess},
		&ReportTool{sess: sess},
		&MatrixTool{sess: sess},
		&ImpactTool{sess: sess},
		&AtTool{sess: sess},
		&SpecsTool{sess: sess},
	}
}

// currentGeneration resolves a spec's latest good generation, failing on
// unknown specs and on specs that have never built successfully.
func currentGeneration(sess *session.Session, spec string) (*session.Generation, error) {
	if spec == "" {
		return nil, fmt.Errorf("spec is required")
	}
	gen, err := sess.Current(spec)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, fmt.Errorf("spec %s has no successful build yet", spec)
	}
	return gen, nil
}
