package reconcile

import "github.com/ns1-tools/ns1-sync/resource"

// fieldSpec describes how one managed document field is merged and
// compared. The registries below drive the comparator and the merge policy;
// their order fixes the order of ChangeSet entries.
type fieldSpec struct {
	name       string
	appendable bool // declared merge mode applies to this list field
	deep       bool // nested object, diffed sparsely so siblings survive
	set        bool // list compared without regard to order
	writeOnly  bool // never echoed by the API, applied whenever declared
}

var zoneFields = []fieldSpec{
	{name: "ttl"},
	{name: "refresh"},
	{name: "retry"},
	{name: "expiry"},
	{name: "nx_ttl"},
	{name: "link"},
	{name: "networks", set: true},
	{name: "dnssec"},
	{name: "secondary", deep: true},
	{name: "primary", deep: true},
}

var recordFields = []fieldSpec{
	{name: "use_client_subnet"},
	{name: "answers", appendable: true},
	{name: "meta"},
	{name: "link"},
	{name: "filters", appendable: true},
	{name: "ttl"},
	{name: "regions"},
}

var tsigKeyFields = []fieldSpec{
	{name: "algorithm"},
	{name: "secret", writeOnly: true},
}

// Nested zone list fields compared as unordered sets.
var setValuedPaths = map[string]bool{
	"secondary.other_ips":         true,
	"secondary.other_ports":       true,
	"secondary.other_notify_only": true,
}

// secondariesPath is matched against live entries by ip+port rather than by
// position, and replaced whole on any difference.
const secondariesPath = "primary.secondaries"

// Server-derived keys stripped from current state before comparison so they
// can never trigger a false change. Extend these when the API grows more
// computed fields.
var (
	derivedKeys       = map[string]bool{"id": true}
	derivedAnswerKeys = map[string]bool{"feeds": true}
)

// sanitizeCurrent deep-copies a fetched document and strips the
// server-derived fields. The original stays untouched for reporting.
func sanitizeCurrent(doc resource.Doc, kind resource.Kind) resource.Doc {
	if doc == nil {
		return nil
	}
	out := doc.Copy()
	stripDerived(out)
	if kind == resource.KindRecord {
		if answers, ok := out["answers"].([]any); ok {
			for _, a := range answers {
				if am, ok := resource.AsMap(a); ok {
					for k := range derivedAnswerKeys {
						delete(am, k)
					}
				}
			}
		}
	}
	return out
}

func stripDerived(v any) {
	if m, ok := resource.AsMap(v); ok {
		for k, sub := range m {
			if derivedKeys[k] {
				delete(m, k)
				continue
			}
			stripDerived(sub)
		}
		return
	}
	if l, ok := v.([]any); ok {
		for _, e := range l {
			stripDerived(e)
		}
	}
}
