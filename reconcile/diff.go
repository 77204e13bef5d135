package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ns1-tools/ns1-sync/resource"
)

// Change is one field-level difference between the merged target document
// and live state. Current is nil when the field is absent remotely or is
// write-only.
type Change struct {
	Path    string
	Desired any
	Current any
}

type ChangeSet []Change

func (cs ChangeSet) Empty() bool { return len(cs) == 0 }

func (cs ChangeSet) Paths() []string {
	paths := make([]string, len(cs))
	for i, ch := range cs {
		paths[i] = ch.Path
	}
	return paths
}

// Patch reassembles the change set into the sparse document submitted on
// update. Nested paths rebuild their object spine so untouched sibling
// fields are never sent, and therefore never cleared remotely.
func (cs ChangeSet) Patch() resource.Doc {
	patch := resource.Doc{}
	for _, ch := range cs {
		segments := strings.Split(ch.Path, ".")
		cur := patch
		for _, seg := range segments[:len(segments)-1] {
			next, ok := cur[seg].(resource.Doc)
			if !ok {
				next = resource.Doc{}
				cur[seg] = next
			}
			cur = next
		}
		cur[segments[len(segments)-1]] = ch.Desired
	}
	return patch
}

// Diff compares the merged target document against (sanitized) current
// state, field by field over the registry. Fields absent from the target
// are unmanaged and skipped entirely; an explicitly empty list still
// participates. Entries come out in registry order, nested keys sorted, so
// logs and tests are reproducible.
func Diff(target, current resource.Doc, fields []fieldSpec) ChangeSet {
	var changes ChangeSet
	for _, f := range fields {
		tv, declared := target[f.name]
		if !declared {
			continue
		}
		if f.writeOnly {
			changes = append(changes, Change{Path: f.name, Desired: tv})
			continue
		}
		cv, exists := current[f.name]
		if !exists {
			changes = append(changes, Change{Path: f.name, Desired: tv})
			continue
		}
		switch {
		case f.deep:
			tm, tok := resource.AsMap(tv)
			cm, cok := resource.AsMap(cv)
			if tok && cok {
				changes = append(changes, diffNested(f.name, tm, cm)...)
				continue
			}
			if !equal(tv, cv) {
				changes = append(changes, Change{Path: f.name, Desired: tv, Current: cv})
			}
		case f.set:
			if !setEqual(tv, cv) {
				changes = append(changes, Change{Path: f.name, Desired: tv, Current: cv})
			}
		default:
			if !equal(tv, cv) {
				changes = append(changes, Change{Path: f.name, Desired: tv, Current: cv})
			}
		}
	}
	return changes
}

func diffNested(prefix string, target, current map[string]any) []Change {
	keys := make([]string, 0, len(target))
	for k := range target {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var changes []Change
	for _, k := range keys {
		path := prefix + "." + k
		tv := target[k]
		cv, exists := current[k]
		if !exists {
			changes = append(changes, Change{Path: path, Desired: tv})
			continue
		}
		if path == secondariesPath {
			if !secondariesEqual(tv, cv) {
				changes = append(changes, Change{Path: path, Desired: tv, Current: cv})
			}
			continue
		}
		if setValuedPaths[path] {
			if !setEqual(tv, cv) {
				changes = append(changes, Change{Path: path, Desired: tv, Current: cv})
			}
			continue
		}
		tm, tok := resource.AsMap(tv)
		cm, cok := resource.AsMap(cv)
		if tok && cok {
			changes = append(changes, diffNested(path, tm, cm)...)
			continue
		}
		if !equal(tv, cv) {
			changes = append(changes, Change{Path: path, Desired: tv, Current: cv})
		}
	}
	return changes
}

// secondariesEqual compares primary.secondaries lists keyed by ip+port, so
// reordering alone is not drift. Only declared keys of each entry are
// checked; live-only keys stay unmanaged.
func secondariesEqual(want, have any) bool {
	wl, wok := want.([]any)
	hl, hok := have.([]any)
	if !wok || !hok {
		return equal(want, have)
	}
	if len(wl) != len(hl) {
		return false
	}

	haveByKey := make(map[string]map[string]any, len(hl))
	for _, h := range hl {
		hm, ok := resource.AsMap(h)
		if !ok {
			return false
		}
		haveByKey[secondaryKey(hm)] = hm
	}
	for _, w := range wl {
		wm, ok := resource.AsMap(w)
		if !ok {
			return false
		}
		hm, ok := haveByKey[secondaryKey(wm)]
		if !ok {
			return false
		}
		for k, wv := range wm {
			hv, exists := hm[k]
			if !exists || !equal(wv, hv) {
				return false
			}
		}
	}
	return true
}

func secondaryKey(m map[string]any) string {
	return fmt.Sprintf("%v:%v", scalarKey(m["ip"]), scalarKey(m["port"]))
}

func setEqual(a, b any) bool {
	al, aok := a.([]any)
	bl, bok := b.([]any)
	if !aok || !bok {
		return equal(a, b)
	}
	as := scalarSet(al)
	bs := scalarSet(bl)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if !bs[k] {
			return false
		}
	}
	return true
}

func scalarSet(l []any) map[string]bool {
	s := make(map[string]bool, len(l))
	for _, v := range l {
		s[scalarKey(v)] = true
	}
	return s
}

// scalarKey keys set members. Numbers normalize across representations;
// booleans already format as "true"/"false", and strings key exactly.
func scalarKey(v any) string {
	if n, ok := normalizeNumber(v); ok {
		return fmt.Sprintf("%v", n)
	}
	return fmt.Sprintf("%v", v)
}

// equal is deep equality with scalar normalization: numbers compare across
// int/float representations and "true"/"True" equals an actual boolean,
// since JSON decoding and the declaration layer disagree on concrete types.
// The boolean equivalence only crosses types: two strings always compare
// exactly, so text payload data like a TXT answer of "True" is never
// conflated with "true". Lists are order-sensitive; the remote API treats
// answer and filter order as precedence.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := normalizeNumber(a); ok {
		bn, ok := normalizeNumber(b)
		return ok && an == bn
	}
	if ab, ok := a.(bool); ok {
		bb, ok := normalizeBool(b)
		return ok && ab == bb
	}
	if bb, ok := b.(bool); ok {
		ab, ok := normalizeBool(a)
		return ok && ab == bb
	}
	switch at := a.(type) {
	case string:
		bs, ok := b.(string)
		return ok && at == bs
	case []any:
		bl, ok := b.([]any)
		if !ok || len(at) != len(bl) {
			return false
		}
		for i := range at {
			if !equal(at[i], bl[i]) {
				return false
			}
		}
		return true
	}
	if am, ok := resource.AsMap(a); ok {
		bm, ok := resource.AsMap(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, exists := bm[k]
			if !exists || !equal(av, bv) {
				return false
			}
		}
		return true
	}
	return a == b
}

func normalizeNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func normalizeBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(b) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
