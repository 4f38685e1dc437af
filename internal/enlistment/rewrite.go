// Package enlistment rewrites enlistment source paths embedded in IFC
// files onto the canonical build-cache layout and reseals the files so
// downstream consumers keep accepting them.
package enlistment

import (
	"bytes"
	"errors"
	"fmt"
)

// Upstream layout constants. A path is eligible when it starts at the
// enlistment source root and passes through a public include
// directory; the project name between the two becomes part of the
// cache path.
const (
	DefaultSrcPrefix    = `SRC_PARENTsrc\`
	DefaultPublicMarker = `\public\`
	DefaultCachePrefix  = `ICACHECUR\`
	DefaultCacheSuffix  = `\src`
)

// ErrReplacementTooLong reports a synthesized cache path that does not
// fit over the stored string. With the default rules this cannot
// happen; custom rules with a longer cache prefix can trigger it.
var ErrReplacementTooLong = errors.New("enlistment: replacement longer than original path")

// Rules holds the four byte strings driving the rewrite. Zero-value
// fields are invalid; start from DefaultRules or LoadRules.
type Rules struct {
	SrcPrefix    string `yaml:"src_prefix"`
	PublicMarker string `yaml:"public_marker"`
	CachePrefix  string `yaml:"cache_prefix"`
	CacheSuffix  string `yaml:"cache_suffix"`
}

// DefaultRules returns the upstream enlistment layout.
func DefaultRules() Rules {
	return Rules{
		SrcPrefix:    DefaultSrcPrefix,
		PublicMarker: DefaultPublicMarker,
		CachePrefix:  DefaultCachePrefix,
		CacheSuffix:  DefaultCacheSuffix,
	}
}

// Rewrite maps one stored path onto the cache layout. It returns the
// rewritten path and true, or the input unchanged and false when the
// path is not eligible (wrong prefix, or no public marker).
//
// The replacement overwrites the leading len(replacement) bytes of the
// path rather than splicing at the matched prefix; the result always
// has the exact length of the input, which is what makes the write
// back into the string table length-preserving. Applying Rewrite to
// its own output is a no-op: the result no longer carries the source
// prefix.
func (r Rules) Rewrite(path []byte) ([]byte, bool, error) {
	if !bytes.HasPrefix(path, []byte(r.SrcPrefix)) {
		return path, false, nil
	}
	idx := bytes.Index(path, []byte(r.PublicMarker))
	if idx < len(r.SrcPrefix) {
		return path, false, nil
	}

	project := bytes.Clone(path[len(r.SrcPrefix):idx])
	if sep := bytes.IndexByte(project, '\\'); sep >= 0 {
		project[sep] = '_'
	}

	replacement := make([]byte, 0, len(r.CachePrefix)+len(project)+len(r.CacheSuffix))
	replacement = append(replacement, r.CachePrefix...)
	replacement = append(replacement, project...)
	replacement = append(replacement, r.CacheSuffix...)

	if len(replacement) > len(path) {
		return path, false, fmt.Errorf("%w: need %d bytes, path has %d",
			ErrReplacementTooLong, len(replacement), len(path))
	}

	out := bytes.Clone(path)
	copy(out, replacement)
	return out, true, nil
}
