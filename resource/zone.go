package resource

import "fmt"

// ZoneSpec declares desired state for one zone. Nil pointers and nil slices
// are unmanaged fields and never touch live values; a non-nil empty slice is
// an explicit "set to empty".
type ZoneSpec struct {
	Zone    string `yaml:"zone"`
	State   State  `yaml:"state"`
	TTL     *int   `yaml:"ttl"`
	Refresh *int   `yaml:"refresh"`
	Retry   *int   `yaml:"retry"`
	Expiry  *int   `yaml:"expiry"`
	NxTTL   *int   `yaml:"nx_ttl"`
	// Link makes this zone a linked copy of another and is mutually
	// exclusive with every other zone configuration field.
	Link      *string        `yaml:"link"`
	Networks  []int          `yaml:"networks"`
	DNSSEC    *bool          `yaml:"dnssec"`
	Secondary *ZoneSecondary `yaml:"secondary"`
	Primary   *ZonePrimary   `yaml:"primary"`
}

// ZoneSecondary configures the zone as a secondary fed from an outside
// primary server.
type ZoneSecondary struct {
	Enabled         *bool    `yaml:"enabled"`
	PrimaryIP       *string  `yaml:"primary_ip"`
	PrimaryPort     *int     `yaml:"primary_port"`
	OtherIPs        []string `yaml:"other_ips"`
	OtherPorts      []int    `yaml:"other_ports"`
	OtherNotifyOnly []bool   `yaml:"other_notify_only"`
	TSIG            *TSIG    `yaml:"tsig"`
}

// TSIG is the transfer-signing binding on a secondary zone.
type TSIG struct {
	Enabled        *bool   `yaml:"enabled"`
	Hash           *string `yaml:"hash"`
	Name           *string `yaml:"name"`
	Key            *string `yaml:"key"`
	SignedNotifies *bool   `yaml:"signed_notifies"`
}

// ZonePrimary configures the zone as a primary serving outside secondaries.
type ZonePrimary struct {
	Enabled     *bool             `yaml:"enabled"`
	Secondaries []SecondaryServer `yaml:"secondaries"`
}

// SecondaryServer is one outside secondary of a primary zone. IP and Port
// together identify the entry when comparing against live state.
type SecondaryServer struct {
	IP     string `yaml:"ip"`
	Port   *int   `yaml:"port"`
	Notify *bool  `yaml:"notify"`
}

func (z ZoneSpec) Identity() Identity {
	return Identity{Kind: KindZone, Zone: z.Zone}
}

// linkExclusive lists the zone fields that cannot be combined with link.
var linkExclusive = []string{
	"refresh", "retry", "expiry", "nx_ttl", "ttl", "networks", "secondary", "primary",
}

func (z ZoneSpec) Validate() error {
	if z.Zone == "" {
		return fmt.Errorf("%w: zone name is required", ErrInvalid)
	}
	if !z.State.valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalid, z.State)
	}
	if z.Link != nil {
		set := z.linkConflicts()
		if len(set) > 0 {
			return fmt.Errorf("%w: link is mutually exclusive with %v", ErrInvalid, set)
		}
	}
	if z.Primary != nil {
		for i, s := range z.Primary.Secondaries {
			if s.IP == "" || s.Port == nil {
				return fmt.Errorf("%w: primary.secondaries[%d] requires ip and port", ErrInvalid, i)
			}
		}
	}
	return nil
}

func (z ZoneSpec) linkConflicts() []string {
	present := map[string]bool{
		"refresh":   z.Refresh != nil,
		"retry":     z.Retry != nil,
		"expiry":    z.Expiry != nil,
		"nx_ttl":    z.NxTTL != nil,
		"ttl":       z.TTL != nil,
		"networks":  z.Networks != nil,
		"secondary": z.Secondary != nil,
		"primary":   z.Primary != nil,
	}
	var set []string
	for _, name := range linkExclusive {
		if present[name] {
			set = append(set, name)
		}
	}
	return set
}

// Document renders the declared fields to a sparse document. Unmanaged
// fields are omitted entirely.
func (z ZoneSpec) Document() Doc {
	d := Doc{}
	setIf(d, "ttl", z.TTL)
	setIf(d, "refresh", z.Refresh)
	setIf(d, "retry", z.Retry)
	setIf(d, "expiry", z.Expiry)
	setIf(d, "nx_ttl", z.NxTTL)
	setIf(d, "link", z.Link)
	if z.Networks != nil {
		d["networks"] = anyList(z.Networks)
	}
	setIf(d, "dnssec", z.DNSSEC)
	if z.Secondary != nil {
		d["secondary"] = z.Secondary.document()
	}
	if z.Primary != nil {
		d["primary"] = z.Primary.document()
	}
	return d
}

func (s ZoneSecondary) document() Doc {
	d := Doc{}
	setIf(d, "enabled", s.Enabled)
	setIf(d, "primary_ip", s.PrimaryIP)
	setIf(d, "primary_port", s.PrimaryPort)
	if s.OtherIPs != nil {
		d["other_ips"] = anyList(s.OtherIPs)
	}
	if s.OtherPorts != nil {
		d["other_ports"] = anyList(s.OtherPorts)
	}
	if s.OtherNotifyOnly != nil {
		d["other_notify_only"] = anyList(s.OtherNotifyOnly)
	}
	if s.TSIG != nil {
		t := Doc{}
		setIf(t, "enabled", s.TSIG.Enabled)
		setIf(t, "hash", s.TSIG.Hash)
		setIf(t, "name", s.TSIG.Name)
		setIf(t, "key", s.TSIG.Key)
		setIf(t, "signed_notifies", s.TSIG.SignedNotifies)
		d["tsig"] = t
	}
	return d
}

func (p ZonePrimary) document() Doc {
	d := Doc{}
	setIf(d, "enabled", p.Enabled)
	if p.Secondaries != nil {
		secs := make([]any, len(p.Secondaries))
		for i, s := range p.Secondaries {
			sec := Doc{"ip": s.IP}
			setIf(sec, "port", s.Port)
			setIf(sec, "notify", s.Notify)
			secs[i] = sec
		}
		d["secondaries"] = secs
	}
	return d
}
