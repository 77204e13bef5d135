package resource

import (
	"errors"
	"testing"
)

func TestRecordFQDN(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		zone   string
		want   string
	}{
		{name: "subdomain", domain: "www", zone: "example.test", want: "www.example.test"},
		{name: "apex", domain: "example.test", zone: "example.test", want: "example.test"},
		{name: "already qualified", domain: "www.example.test", zone: "example.test", want: "www.example.test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := RecordSpec{Zone: tt.zone, Domain: tt.domain, Type: "A"}
			if got := spec.FQDN(); got != tt.want {
				t.Errorf("FQDN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordValidate(t *testing.T) {
	base := RecordSpec{Zone: "example.test", Domain: "www", Type: "A"}
	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lower := base
	lower.Type = "mx"
	if err := lower.Validate(); err != nil {
		t.Errorf("lowercase type should be accepted: %v", err)
	}

	bad := base
	bad.Type = "SOA"
	if err := bad.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for unsupported type, got %v", err)
	}

	badMode := base
	badMode.Mode = "union"
	if err := badMode.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for unknown mode, got %v", err)
	}
}

func TestRecordDocumentDropsEmptyAnswerFields(t *testing.T) {
	spec := RecordSpec{
		Zone:   "example.test",
		Domain: "www",
		Type:   "A",
		Answers: []Answer{
			{Answer: []any{"1.1.1.1"}},
			{Answer: []any{"2.2.2.2"}, Meta: map[string]any{"up": true}},
		},
	}

	doc := spec.Document()
	answers := doc["answers"].([]any)

	first, _ := AsMap(answers[0])
	if _, exists := first["meta"]; exists {
		t.Error("nil answer meta rendered into document")
	}
	if _, exists := first["region"]; exists {
		t.Error("nil answer region rendered into document")
	}

	second, _ := AsMap(answers[1])
	meta, _ := AsMap(second["meta"])
	if got := meta["up"]; got != true {
		t.Errorf("answer meta.up = %v, want true", got)
	}
}

func TestRecordDocumentFilterConfigDefaultsEmpty(t *testing.T) {
	spec := RecordSpec{
		Zone:   "example.test",
		Domain: "www",
		Type:   "A",
		Filters: []Filter{
			{Filter: "up"},
			{Filter: "geotarget_country", Config: map[string]any{"fuzzy": true}},
		},
	}

	doc := spec.Document()
	filters := doc["filters"].([]any)

	first, _ := AsMap(filters[0])
	cfg, ok := AsMap(first["config"])
	if !ok || len(cfg) != 0 {
		t.Errorf("undeclared filter config = %v, want empty object", first["config"])
	}

	second, _ := AsMap(filters[1])
	cfg, _ = AsMap(second["config"])
	if got := cfg["fuzzy"]; got != true {
		t.Errorf("filter config.fuzzy = %v, want true", got)
	}
}

func TestTSIGKeyNormalizedName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "MyKey", want: "mykey."},
		{in: "mykey.", want: "mykey."},
		{in: "Xfr.Example.Test.", want: "xfr.example.test."},
	}
	for _, tt := range tests {
		spec := TSIGKeySpec{Name: tt.in}
		if got := spec.NormalizedName(); got != tt.want {
			t.Errorf("NormalizedName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
