package enlistment

import (
	"bytes"
	"errors"
	"testing"
)

func TestRewriteSingleSegmentProject(t *testing.T) {
	t.Parallel()

	in := []byte(`SRC_PARENTsrc\foo\public\include\bar.h`)
	out, ok, err := DefaultRules().Rewrite(in)
	if err != nil || !ok {
		t.Fatalf("rewrite: ok=%v err=%v", ok, err)
	}
	// The 17-byte replacement overwrites the first 17 bytes; the tail
	// is untouched and the length is preserved.
	want := `ICACHECUR\foo\src\public\include\bar.h`
	if string(out) != want {
		t.Fatalf("got %q want %q", out, want)
	}
	if len(out) != len(in) {
		t.Fatalf("length changed: %d -> %d", len(in), len(out))
	}
}

func TestRewriteNestedProject(t *testing.T) {
	t.Parallel()

	in := []byte(`SRC_PARENTsrc\foo\bar\public\x.h`)
	out, ok, err := DefaultRules().Rewrite(in)
	if err != nil || !ok {
		t.Fatalf("rewrite: ok=%v err=%v", ok, err)
	}
	// The first backslash inside the project collapses to an
	// underscore: foo\bar -> foo_bar.
	if !bytes.HasPrefix(out, []byte(`ICACHECUR\foo_bar\src`)) {
		t.Fatalf("got %q", out)
	}
	if len(out) != len(in) {
		t.Fatalf("length changed: %d -> %d", len(in), len(out))
	}
	if !bytes.Equal(out[21:], in[21:]) {
		t.Fatalf("tail mutated: got %q", out[21:])
	}
}

func TestRewriteIneligiblePaths(t *testing.T) {
	t.Parallel()

	cases := []string{
		`C:\other\x.h`,                   // wrong prefix
		`SRC_PARENTsrc\foo\private\x.h`,  // no public marker
		`src_parentsrc\foo\public\x.h`,   // case-sensitive prefix
		``,                               // empty
		`\public\SRC_PARENTsrc\foo\x.h`,  // marker before prefix only
	}
	for _, c := range cases {
		in := []byte(c)
		out, ok, err := DefaultRules().Rewrite(in)
		if err != nil {
			t.Fatalf("%q: %v", c, err)
		}
		if ok {
			t.Fatalf("%q: unexpectedly eligible", c)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("%q: changed to %q", c, out)
		}
	}
}

func TestRewriteIdempotent(t *testing.T) {
	t.Parallel()

	once, ok, err := DefaultRules().Rewrite([]byte(`SRC_PARENTsrc\foo\public\a.h`))
	if err != nil || !ok {
		t.Fatalf("first application: ok=%v err=%v", ok, err)
	}
	twice, ok, err := DefaultRules().Rewrite(once)
	if err != nil {
		t.Fatalf("second application: %v", err)
	}
	if ok {
		t.Fatal("second application claimed a rewrite")
	}
	if !bytes.Equal(twice, once) {
		t.Fatalf("not idempotent: %q -> %q", once, twice)
	}
}

func TestRewriteDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []byte(`SRC_PARENTsrc\foo\public\a.h`)
	orig := bytes.Clone(in)
	if _, _, err := DefaultRules().Rewrite(in); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if !bytes.Equal(in, orig) {
		t.Fatalf("input mutated: %q", in)
	}
}

func TestRewriteReplacementTooLong(t *testing.T) {
	t.Parallel()

	// The default cache prefix+suffix never outgrow the source prefix
	// plus marker, so overflow needs rules with a longer cache prefix.
	rules := DefaultRules()
	rules.CachePrefix = `VERY\LONG\CACHE\ROOT\PREFIX\`

	in := []byte(`SRC_PARENTsrc\p\public\a`)
	out, ok, err := rules.Rewrite(in)
	if !errors.Is(err, ErrReplacementTooLong) {
		t.Fatalf("got ok=%v err=%v, want ErrReplacementTooLong", ok, err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("failed rewrite changed the path: %q", out)
	}
}

func TestRewriteMarkerInsidePrefix(t *testing.T) {
	t.Parallel()

	// The prefix's trailing backslash doubles as the marker's leading
	// one here, so the marker starts before the project can. Such a
	// path has no project segment and is left alone.
	in := []byte(`SRC_PARENTsrc\public\padding\x.h`)
	out, ok, err := DefaultRules().Rewrite(in)
	if err != nil || ok {
		t.Fatalf("got ok=%v err=%v, want ineligible", ok, err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("changed to %q", out)
	}
}

func TestRewriteEmptyProject(t *testing.T) {
	t.Parallel()

	in := []byte(`SRC_PARENTsrc\\public\some\longer\x.h`)
	out, ok, err := DefaultRules().Rewrite(in)
	if err != nil || !ok {
		t.Fatalf("rewrite: ok=%v err=%v", ok, err)
	}
	if !bytes.HasPrefix(out, []byte(`ICACHECUR\\src`)) {
		t.Fatalf("got %q", out)
	}
}
