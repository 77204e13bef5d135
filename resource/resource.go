package resource

import (
	"errors"
	"fmt"
)

// ErrInvalid marks a malformed resource declaration. It is always returned
// (wrapped) before any API call is made.
var ErrInvalid = errors.New("invalid resource declaration")

type Kind string

const (
	KindZone    Kind = "zone"
	KindRecord  Kind = "record"
	KindTSIGKey Kind = "tsigkey"
)

// State is the declared desired state of a resource.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

func (s State) valid() bool {
	return s == "" || s == StatePresent || s == StateAbsent
}

// Present reports whether the declaration asks for the resource to exist.
// An empty state defaults to present.
func (s State) Present() bool {
	return s == "" || s == StatePresent
}

// MergeMode governs how declared list fields (record answers and filters)
// combine with live values. Non-list fields always follow replace semantics.
type MergeMode string

const (
	// ModeReplace submits declared lists verbatim, discarding live entries.
	ModeReplace MergeMode = "replace"
	// ModeAppend unions declared entries onto live entries, skipping
	// structural duplicates so repeated runs stay idempotent.
	ModeAppend MergeMode = "append"
	// ModePurge is replace with explicit intent: an empty declared list
	// clears the live list.
	ModePurge MergeMode = "purge"
)

func (m MergeMode) valid() bool {
	return m == "" || m == ModeReplace || m == ModeAppend || m == ModePurge
}

// Identity names one remote resource. It is fixed for the duration of a
// reconciliation.
type Identity struct {
	Kind   Kind
	Zone   string // zone name, or parent zone for records
	Domain string // records only, fully qualified
	Type   string // records only
	Name   string // tsig keys only, normalized
}

func (id Identity) String() string {
	switch id.Kind {
	case KindRecord:
		return fmt.Sprintf("record %s/%s", id.Domain, id.Type)
	case KindTSIGKey:
		return fmt.Sprintf("tsig key %s", id.Name)
	default:
		return fmt.Sprintf("zone %s", id.Zone)
	}
}

// Doc is a wire-shaped resource document. Current state fetched from the
// API decodes into a fully populated Doc; desired state renders to a sparse
// Doc containing only declared fields.
type Doc map[string]any

// Copy returns a deep copy. Nested maps and lists are duplicated so callers
// can mutate the copy freely.
func (d Doc) Copy() Doc {
	if d == nil {
		return nil
	}
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = CopyValue(v)
	}
	return out
}

// CopyValue deep-copies one document value.
func CopyValue(v any) any {
	switch t := v.(type) {
	case Doc:
		return t.Copy()
	case map[string]any:
		return Doc(t).Copy()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CopyValue(e)
		}
		return out
	default:
		return v
	}
}

// AsMap unwraps a document value to a plain map, accepting both Doc and the
// map type produced by JSON/YAML decoding.
func AsMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case Doc:
		return t, true
	case map[string]any:
		return t, true
	default:
		return nil, false
	}
}

func anyList[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func setIf[T any](d Doc, key string, v *T) {
	if v != nil {
		d[key] = *v
	}
}
