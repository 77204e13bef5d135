package reconcile

import "github.com/ns1-tools/ns1-sync/resource"

// Merge resolves the declared document against current state under the
// declared merge mode, producing the target document to submit.
//
// Replace and purge take declared list fields verbatim: purge differs only
// in intent, in that an explicitly empty list clears the live one. Append
// unions declared entries onto the live list, preserving live order and
// skipping entries structurally equal to an existing one, which is what
// keeps repeated append runs idempotent. Mode never touches non-list
// fields, and never applies when the resource does not exist yet.
func Merge(desired, current resource.Doc, mode resource.MergeMode, fields []fieldSpec) resource.Doc {
	target := desired.Copy()
	if mode != resource.ModeAppend || current == nil {
		return target
	}

	for _, f := range fields {
		if !f.appendable {
			continue
		}
		dv, ok := target[f.name].([]any)
		if !ok {
			continue
		}
		cv, ok := current[f.name].([]any)
		if !ok {
			continue
		}
		merged := make([]any, len(cv))
		copy(merged, cv)
		for _, entry := range dv {
			if !containsEqual(cv, entry) {
				merged = append(merged, entry)
			}
		}
		target[f.name] = merged
	}
	return target
}

func containsEqual(list []any, v any) bool {
	for _, e := range list {
		if equal(e, v) {
			return true
		}
	}
	return false
}
