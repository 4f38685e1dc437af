package ifc

import (
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	ErrBadSignature     = errors.New("ifc: not an IFC file (bad signature)")
	ErrArchMismatch     = errors.New("ifc: architecture mismatch")
	ErrUnitSortMismatch = errors.New("ifc: unexpected unit sort")
	ErrMalformed        = errors.New("ifc: malformed container")
	ErrBadStringIndex   = errors.New("ifc: bad string offset")
	ErrStringGrowth     = errors.New("ifc: in-place string overwrite cannot grow")
)

// IntegrityError reports a content-hash mismatch found during
// validation. Both digests are carried for operator triage.
type IntegrityError struct {
	Stored   [hashSize]byte
	Computed [hashSize]byte
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ifc: content integrity check failed: stored %s, computed %s",
		hex.EncodeToString(e.Stored[:]), hex.EncodeToString(e.Computed[:]))
}
