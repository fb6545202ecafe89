package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cabin is one watched bookable cabin.
type Cabin struct {
	ID          string
	Name        string
	URL         string
	Description string
	Enabled     bool
}

// BookingURL returns the public booking page for the cabin.
func (c Cabin) BookingURL() string {
	if c.URL != "" {
		return c.URL
	}
	return "https://hyttebestilling.dnt.no/hytte/" + c.ID
}

// rawCabinEntry is used for initial YAML parsing.
type rawCabinEntry struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Disabled    bool   `yaml:"disabled"`
}

type cabinsFile struct {
	Cabins []rawCabinEntry `yaml:"cabins"`
}

// CabinRegistry holds the parsed watch list. It is read-only after load; the
// watcher takes a snapshot of the enabled cabins at the start of each cycle.
type CabinRegistry struct {
	cabins []Cabin
}

// All returns every configured cabin, including disabled ones.
func (r *CabinRegistry) All() []Cabin {
	out := make([]Cabin, len(r.cabins))
	copy(out, r.cabins)
	return out
}

// Enabled returns the cabins that should be checked this cycle.
func (r *CabinRegistry) Enabled() []Cabin {
	var out []Cabin
	for _, c := range r.cabins {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// Get returns the cabin with the given ID, or false when unknown.
func (r *CabinRegistry) Get(id string) (Cabin, bool) {
	for _, c := range r.cabins {
		if c.ID == id {
			return c, true
		}
	}
	return Cabin{}, false
}

// LoadCabinRegistry reads the watched-cabins YAML file at filePath. If the
// file does not exist, an empty registry is returned (not an error). Entries
// without a resolvable cabin ID are skipped.
func LoadCabinRegistry(filePath string) (*CabinRegistry, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path is from admin-configured data dir
	if err != nil {
		if os.IsNotExist(err) {
			return &CabinRegistry{}, nil
		}
		return nil, fmt.Errorf("reading cabins file %q: %w", filePath, err)
	}

	var raw cabinsFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing cabins file %q: %w", filePath, err)
	}

	reg := &CabinRegistry{}
	for _, e := range raw.Cabins {
		id := e.ID
		if id == "" {
			id = ExtractCabinID(e.URL)
		}
		if id == "" || e.Name == "" {
			continue
		}
		reg.cabins = append(reg.cabins, Cabin{
			ID:          id,
			Name:        e.Name,
			URL:         e.URL,
			Description: e.Description,
			Enabled:     !e.Disabled,
		})
	}
	return reg, nil
}

// ExtractCabinID pulls the cabin ID out of a DNT booking URL, e.g.
// "https://hyttebestilling.dnt.no/hytte/101297" yields "101297".
func ExtractCabinID(url string) string {
	trimmed := strings.TrimRight(url, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return ""
	}
	return trimmed[idx+1:]
}
