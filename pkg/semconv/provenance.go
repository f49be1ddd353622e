package semconv

import "fmt"

// Provenance records where a raw group or attribute came from: which
// registry declared it and at what path within that registry. Every loaded
// group and attribute carries one (§4.1).
type Provenance struct {
	RegistryID string `json:"registry_id"`
	Path       string `json:"path"`
}

func (p Provenance) String() string {
	if p.RegistryID == "" && p.Path == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%s", p.RegistryID, p.Path)
}

// IsZero reports whether no provenance was ever attached.
func (p Provenance) IsZero() bool {
	return p.RegistryID == "" && p.Path == ""
}
