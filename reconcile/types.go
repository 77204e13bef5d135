package reconcile

import (
	"log/slog"

	"github.com/ns1-tools/ns1-sync/resource"
)

// Outcome is the stable result shape of one reconciliation: whether a
// change happened, plus the resulting document. Resource is the server's
// post-mutation document after a change, the pre-check document on a no-op,
// and nil after a delete.
type Outcome struct {
	Changed  bool
	Resource resource.Doc
}

// OperationResult is one resource's outcome within a sync run.
type OperationResult struct {
	Resource string
	Kind     resource.Kind
	Changed  bool
	Error    string
}

// Results aggregates a sync run. Pure shaping, nothing is recomputed here.
type Results struct {
	Outcomes []OperationResult
	Changed  int
	Failures int
}

func (r *Results) record(id resource.Identity, out Outcome, err error) {
	res := OperationResult{
		Resource: id.String(),
		Kind:     id.Kind,
		Changed:  out.Changed,
	}
	if err != nil {
		res.Error = err.Error()
		r.Failures++
		slog.Error("Failed to reconcile", "resource", res.Resource, "error", err)
	} else if out.Changed {
		r.Changed++
	}
	r.Outcomes = append(r.Outcomes, res)
}
