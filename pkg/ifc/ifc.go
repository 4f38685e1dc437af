// Package ifc implements read and in-place update access to IFC
// interface-module containers.
//
// An IFC file is a self-verifying container: a 4-byte interface
// signature, a 32-byte SHA-256 digest sealing everything after it,
// a fixed header tail, and a directory of named partitions, each a
// homogeneous array of fixed-size records. Strings live in a single
// table of NUL-terminated byte sequences and are referenced by byte
// offset from everywhere else in the file.
//
// The package supports exactly the mutations an external
// post-processor needs: overwriting a string in place with an
// equal-or-shorter payload and recomputing the content hash.
package ifc

import "fmt"

// Signature is the 4-byte magic that opens every IFC file.
var Signature = [4]byte{0x54, 0x51, 0x45, 0x1A}

// Fixed layout offsets. The hashed region starts immediately after
// the signature and the stored hash slot.
const (
	sigSize       = 4
	hashSize      = 32
	contentsStart = sigSize + hashSize

	// headerTailSize covers the fixed fields from contentsStart up to
	// the first variable region.
	headerTailSize = 40
	minFileSize    = contentsStart + headerTailSize

	partitionEntrySize   = 16
	sourceFileRecordSize = 8
)

// The format pins the hashed region at byte 36. Keep the constant
// arithmetic honest.
const (
	_ uint = contentsStart - 36
	_ uint = 36 - contentsStart
)

// TextOffset locates a string: a byte offset relative to the start of
// the string table. Offset 0 conventionally resolves to the empty
// string and is treated as "unset" by record consumers.
type TextOffset uint32

// Architecture is the target architecture recorded in the header.
type Architecture uint8

const (
	ArchUnknown        Architecture = 0
	ArchX86            Architecture = 1
	ArchX64            Architecture = 2
	ArchARM32          Architecture = 3
	ArchARM64          Architecture = 4
	ArchHybridX86ARM64 Architecture = 5
	ArchARM64EC        Architecture = 6
)

func (a Architecture) String() string {
	switch a {
	case ArchUnknown:
		return "unknown"
	case ArchX86:
		return "x86"
	case ArchX64:
		return "x64"
	case ArchARM32:
		return "arm32"
	case ArchARM64:
		return "arm64"
	case ArchHybridX86ARM64:
		return "hybrid-x86-arm64"
	case ArchARM64EC:
		return "arm64ec"
	default:
		return fmt.Sprintf("arch(%d)", uint8(a))
	}
}

// UnitSort is the translation-unit kind stored in the low bits of the
// header's unit word.
type UnitSort uint8

const (
	SortSource     UnitSort = 0
	SortPrimary    UnitSort = 1
	SortPartition  UnitSort = 2
	SortHeader     UnitSort = 3
	SortExportedTU UnitSort = 4

	// SortAny disables the unit-sort check in Validate.
	SortAny UnitSort = 0xFF
)

func (s UnitSort) String() string {
	switch s {
	case SortSource:
		return "source"
	case SortPrimary:
		return "primary"
	case SortPartition:
		return "partition"
	case SortHeader:
		return "header"
	case SortExportedTU:
		return "exported-tu"
	case SortAny:
		return "any"
	default:
		return fmt.Sprintf("sort(%d)", uint8(s))
	}
}

// unitSortMask extracts the sort from the unit word.
const unitSortMask = 0x7

// Header is the decoded fixed header tail. All fields are stored
// little-endian on disk starting at byte 36; the unit word packs the
// sort into its low three bits.
type Header struct {
	MajorVersion uint8
	MinorVersion uint8
	Abi          uint8
	Arch         Architecture
	Dialect      uint32

	// String table locator: byte offset and span within the file.
	StringTableOffset uint32
	StringTableSize   uint32

	Unit        uint32
	SrcPath     TextOffset
	GlobalScope uint32

	// Partition table locator.
	TOCOffset      uint32
	PartitionCount uint32

	Internal bool
}

// UnitSort returns the translation-unit sort carried by the unit word.
func (h *Header) UnitSort() UnitSort {
	return UnitSort(h.Unit & unitSortMask)
}

// PartitionEntry is one descriptor from the partition table: a named,
// homogeneous array of EntrySize-byte records starting at Offset.
type PartitionEntry struct {
	Name        TextOffset
	Offset      uint32
	Cardinality uint32
	EntrySize   uint32
}

// ByteLen returns the total byte span of the partition's record array.
func (p PartitionEntry) ByteLen() uint64 {
	return uint64(p.Cardinality) * uint64(p.EntrySize)
}

// SourceFileRecord is one element of the "name.source-file" partition.
// Path names the translated source path; Guard is the include-guard
// macro name, if any.
type SourceFileRecord struct {
	Path  TextOffset
	Guard TextOffset
}

// SourceFilePartition is the well-known name of the partition holding
// SourceFileRecord entries.
const SourceFilePartition = "name.source-file"
