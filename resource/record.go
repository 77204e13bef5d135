package resource

import (
	"fmt"
	"strings"
)

// recordTypes are the record types accepted by the remote API.
var recordTypes = map[string]bool{
	"A": true, "AAAA": true, "ALIAS": true, "AFSDB": true, "CNAME": true,
	"DNAME": true, "HINFO": true, "MX": true, "NAPTR": true, "NS": true,
	"PTR": true, "RP": true, "SPF": true, "SRV": true, "TXT": true,
}

// RecordSpec declares desired state for one record within an existing zone.
type RecordSpec struct {
	Zone   string    `yaml:"zone"`
	Domain string    `yaml:"domain"`
	Type   string    `yaml:"type"`
	State  State     `yaml:"state"`
	Mode   MergeMode `yaml:"mode"`
	// IgnoreMissingZone turns "delete a record whose zone is already gone"
	// into a reported no-op instead of an error.
	IgnoreMissingZone bool           `yaml:"ignoreMissingZone"`
	Answers           []Answer       `yaml:"answers"`
	Filters           []Filter       `yaml:"filters"`
	TTL               *int           `yaml:"ttl"`
	UseClientSubnet   *bool          `yaml:"use_client_subnet"`
	Meta              map[string]any `yaml:"meta"`
	Link              *string        `yaml:"link"`
	Regions           map[string]any `yaml:"regions"`
}

// Answer is one entry in a record's answer list. Order matters to the
// remote filter chain, so answers are compared as ordered sequences.
type Answer struct {
	Answer []any          `yaml:"answer"`
	Meta   map[string]any `yaml:"meta"`
	Region *string        `yaml:"region"`
}

// Filter is one entry in a record's filter chain.
type Filter struct {
	Filter string         `yaml:"filter"`
	Config map[string]any `yaml:"config"`
}

func (r RecordSpec) Identity() Identity {
	return Identity{Kind: KindRecord, Zone: r.Zone, Domain: r.FQDN(), Type: strings.ToUpper(r.Type)}
}

// FQDN qualifies the declared domain against its zone. A domain equal to
// the zone is the apex record.
func (r RecordSpec) FQDN() string {
	if r.Domain == r.Zone || strings.HasSuffix(r.Domain, "."+r.Zone) {
		return r.Domain
	}
	return r.Domain + "." + r.Zone
}

func (r RecordSpec) Validate() error {
	if r.Zone == "" {
		return fmt.Errorf("%w: record zone is required", ErrInvalid)
	}
	if r.Domain == "" {
		return fmt.Errorf("%w: record domain is required", ErrInvalid)
	}
	if !recordTypes[strings.ToUpper(r.Type)] {
		return fmt.Errorf("%w: unknown record type %q", ErrInvalid, r.Type)
	}
	if !r.State.valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalid, r.State)
	}
	if !r.Mode.valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalid, r.Mode)
	}
	return nil
}

// Document renders the declared fields to a sparse document. Empty answer
// subfields are dropped rather than sent as nulls.
func (r RecordSpec) Document() Doc {
	d := Doc{}
	setIf(d, "use_client_subnet", r.UseClientSubnet)
	if r.Answers != nil {
		answers := make([]any, len(r.Answers))
		for i, a := range r.Answers {
			answers[i] = a.document()
		}
		d["answers"] = answers
	}
	if r.Meta != nil {
		d["meta"] = Doc(r.Meta).Copy()
	}
	setIf(d, "link", r.Link)
	if r.Filters != nil {
		filters := make([]any, len(r.Filters))
		for i, f := range r.Filters {
			// The remote echoes filters with an empty config object, so an
			// undeclared config renders as {} to converge against it.
			fd := Doc{"filter": f.Filter, "config": Doc{}}
			if f.Config != nil {
				fd["config"] = Doc(f.Config).Copy()
			}
			filters[i] = fd
		}
		d["filters"] = filters
	}
	setIf(d, "ttl", r.TTL)
	if r.Regions != nil {
		d["regions"] = Doc(r.Regions).Copy()
	}
	return d
}

func (a Answer) document() Doc {
	d := Doc{}
	if a.Answer != nil {
		out := make([]any, len(a.Answer))
		copy(out, a.Answer)
		d["answer"] = out
	}
	if a.Meta != nil {
		d["meta"] = Doc(a.Meta).Copy()
	}
	setIf(d, "region", a.Region)
	return d
}
