// Package catalog holds the set of policy types an agency can record.
// The built-in types mirror the products Turkish agencies sell most often;
// deployments can extend or replace them with a YAML file.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tbourn/policy-tracker-backend/internal/utils"
)

// Defaults are the policy types available without a catalog file.
var Defaults = []string{"Kasko", "Trafik", "DASK", "Sağlık"}

// ErrEmpty is returned when a catalog file declares no usable types.
var ErrEmpty = errors.New("catalog: no policy types defined")

// Catalog is an immutable, ordered set of policy type names. Lookups are
// case-insensitive and treat the Turkish i variants as one letter, so
// "sağlık", "SAĞLIK" and "TRAFİK" all resolve. Safe for concurrent use.
type Catalog struct {
	names []string
	index map[string]string
}

// fileFormat is the YAML layout accepted by LoadFile:
//
//	policy_types:
//	  - Kasko
//	  - Trafik
//	replace_defaults: false
type fileFormat struct {
	PolicyTypes     []string `yaml:"policy_types"`
	ReplaceDefaults bool     `yaml:"replace_defaults"`
}

// New builds a catalog from names, dropping blanks and case-insensitive
// duplicates while keeping the first spelling seen.
func New(names ...string) *Catalog {
	c := &Catalog{index: make(map[string]string, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		k := utils.FoldTR(n)
		if _, dup := c.index[k]; dup {
			continue
		}
		c.index[k] = n
		c.names = append(c.names, n)
	}
	return c
}

// Default returns a catalog with the built-in policy types.
func Default() *Catalog { return New(Defaults...) }

// LoadFile reads a YAML catalog. Listed types are appended to the defaults
// unless replace_defaults is true. An empty path yields Default().
func LoadFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	names := f.PolicyTypes
	if !f.ReplaceDefaults {
		names = append(append([]string{}, Defaults...), names...)
	}
	c := New(names...)
	if len(c.names) == 0 {
		return nil, ErrEmpty
	}
	return c, nil
}

// Names returns the policy types in declaration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Canonical returns the catalog spelling of name and whether it is known.
func (c *Catalog) Canonical(name string) (string, bool) {
	v, ok := c.index[utils.FoldTR(name)]
	return v, ok
}
