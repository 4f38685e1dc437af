package enlistment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRules reads a rules file and overlays it on the defaults. Keys
// absent from the file keep their default values; an empty path
// returns the defaults untouched.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("reading rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	if rules.SrcPrefix == "" || rules.PublicMarker == "" || rules.CachePrefix == "" {
		return rules, fmt.Errorf("rules file %s: src_prefix, public_marker and cache_prefix must be non-empty", path)
	}
	return rules, nil
}
