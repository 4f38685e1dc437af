package enlistment

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRulesEmptyPath(t *testing.T) {
	t.Parallel()

	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rules != DefaultRules() {
		t.Fatalf("got %+v want defaults", rules)
	}
}

func TestLoadRulesPartialOverride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "src_prefix: 'D:\\enlistment\\src\\'\ncache_prefix: 'D:\\cache\\'\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rules.SrcPrefix != `D:\enlistment\src\` {
		t.Fatalf("src prefix: got %q", rules.SrcPrefix)
	}
	if rules.CachePrefix != `D:\cache\` {
		t.Fatalf("cache prefix: got %q", rules.CachePrefix)
	}
	// Keys absent from the file keep their defaults.
	if rules.PublicMarker != DefaultPublicMarker {
		t.Fatalf("public marker: got %q", rules.PublicMarker)
	}
	if rules.CacheSuffix != DefaultCacheSuffix {
		t.Fatalf("cache suffix: got %q", rules.CacheSuffix)
	}
}

func TestLoadRulesRejectsEmptyPrefix(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("src_prefix: ''\n"), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected error for empty src_prefix")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing rules file")
	}
}
