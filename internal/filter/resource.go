package filter

import (
	"path/filepath"
	"strings"

	"github.com/dyluth/roster/pkg/docstore"
)

// Criteria defines filtering criteria for resources.
// All filters are ANDed together - a resource must match ALL criteria to pass.
type Criteria struct {
	TypeGlob  string // Glob pattern for resource type, empty = no filter
	TitleGlob string // Case-insensitive glob pattern for title, empty = no filter
}

// Matches returns true if the resource matches all filter criteria.
// Empty criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(r docstore.Resource) bool {
	if c.TypeGlob != "" {
		matched, err := filepath.Match(c.TypeGlob, string(r.Type))
		if err != nil || !matched {
			return false
		}
	}

	if c.TitleGlob != "" {
		matched, err := filepath.Match(strings.ToLower(c.TitleGlob), strings.ToLower(r.Title))
		if err != nil || !matched {
			return false
		}
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.TypeGlob != "" || c.TitleGlob != ""
}

// Apply returns the resources matching c, keeping their order.
func (c *Criteria) Apply(list docstore.ResourceList) docstore.ResourceList {
	if !c.HasFilters() {
		return list
	}
	var out docstore.ResourceList
	for _, r := range list {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Validate reports a malformed glob before any matching happens.
func (c *Criteria) Validate() error {
	for _, pattern := range []string{c.TypeGlob, c.TitleGlob} {
		if pattern == "" {
			continue
		}
		if _, err := filepath.Match(pattern, ""); err != nil {
			return err
		}
	}
	return nil
}
