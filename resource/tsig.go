package resource

import (
	"fmt"
	"strings"
)

// TSIGKeySpec declares desired state for one shared transfer-signing key.
// The remote API never echoes the secret back, so a declared secret is
// applied unconditionally rather than diffed.
type TSIGKeySpec struct {
	Name      string  `yaml:"name"`
	State     State   `yaml:"state"`
	Algorithm *string `yaml:"algorithm"`
	Secret    *string `yaml:"secret"`
}

func (k TSIGKeySpec) Identity() Identity {
	return Identity{Kind: KindTSIGKey, Name: k.NormalizedName()}
}

// NormalizedName applies the remote platform's key-name normalization:
// lowercase with a trailing dot.
func (k TSIGKeySpec) NormalizedName() string {
	name := strings.ToLower(k.Name)
	if name != "" && !strings.HasSuffix(name, ".") {
		name += "."
	}
	return name
}

func (k TSIGKeySpec) Validate() error {
	if k.Name == "" {
		return fmt.Errorf("%w: tsig key name is required", ErrInvalid)
	}
	if !k.State.valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalid, k.State)
	}
	return nil
}

func (k TSIGKeySpec) Document() Doc {
	d := Doc{}
	setIf(d, "algorithm", k.Algorithm)
	setIf(d, "secret", k.Secret)
	return d
}

// Declarations is the full set of resources one sync run manages. Each
// resource reconciles independently; order within a kind is preserved.
type Declarations struct {
	Zones    []ZoneSpec    `yaml:"zones"`
	Records  []RecordSpec  `yaml:"records"`
	TSIGKeys []TSIGKeySpec `yaml:"tsigKeys"`
}
