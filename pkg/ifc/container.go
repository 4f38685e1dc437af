package ifc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Options controls optional validation work.
type Options uint32

const (
	// IntegrityCheck verifies the stored content hash against a fresh
	// SHA-256 of the file body during Validate.
	IntegrityCheck Options = 1 << 0
)

// File is a mutable view over a single IFC container. Mutations write
// straight into the underlying byte span; when the span is a shared
// file mapping they reach the file itself.
//
// The partition directory and string-table locator become available
// after Validate succeeds.
type File struct {
	data       []byte
	header     Header
	partitions []PartitionEntry
	m          *mapping
}

// New wraps an in-memory IFC image. The buffer must hold at least the
// signature, hash slot and fixed header tail.
func New(data []byte) (*File, error) {
	if len(data) < minFileSize {
		return nil, fmt.Errorf("%w: %d bytes is smaller than the fixed header", ErrMalformed, len(data))
	}
	f := &File{data: data}
	f.decodeHeader()
	return f, nil
}

// Open memory-maps the file at path read-write with shared visibility
// and wraps it. Mutations made through the returned File land in the
// file; Close flushes and releases the mapping.
func Open(path string) (*File, error) {
	m, err := mapShared(path)
	if err != nil {
		return nil, err
	}
	f, err := New(m.data)
	if err != nil {
		_ = m.close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.m = m
	return f, nil
}

// Close flushes outstanding mutations and releases the mapping, if
// any. The File must not be used afterwards.
func (f *File) Close() error {
	if f == nil {
		return nil
	}
	var err error
	if f.m != nil {
		err = f.m.close()
		f.m = nil
	}
	f.data = nil
	f.partitions = nil
	return err
}

// Size returns the container size in bytes.
func (f *File) Size() int { return len(f.data) }

// Header returns the decoded fixed header tail.
func (f *File) Header() Header { return f.header }

func (f *File) decodeHeader() {
	b := f.data[contentsStart:]
	h := &f.header
	h.MajorVersion = b[0]
	h.MinorVersion = b[1]
	h.Abi = b[2]
	h.Arch = Architecture(b[3])
	h.Dialect = binary.LittleEndian.Uint32(b[4:])
	h.StringTableOffset = binary.LittleEndian.Uint32(b[8:])
	h.StringTableSize = binary.LittleEndian.Uint32(b[12:])
	h.Unit = binary.LittleEndian.Uint32(b[16:])
	h.SrcPath = TextOffset(binary.LittleEndian.Uint32(b[20:]))
	h.GlobalScope = binary.LittleEndian.Uint32(b[24:])
	h.TOCOffset = binary.LittleEndian.Uint32(b[28:])
	h.PartitionCount = binary.LittleEndian.Uint32(b[32:])
	h.Internal = b[36] != 0
}

// Validate checks the container against the caller's expectations and
// parses the partition directory.
//
// The signature is always checked. The content hash is verified only
// when opts includes IntegrityCheck. The architecture check is skipped
// when either the expectation or the file's field is ArchUnknown; the
// unit-sort check is skipped when expectSort is SortAny.
func (f *File) Validate(expectSort UnitSort, expectArch Architecture, opts Options) error {
	if [sigSize]byte(f.data[:sigSize]) != Signature {
		return ErrBadSignature
	}
	if opts&IntegrityCheck != 0 {
		if err := f.VerifyContentIntegrity(); err != nil {
			return err
		}
	}
	h := &f.header
	if expectArch != ArchUnknown && h.Arch != ArchUnknown && h.Arch != expectArch {
		return fmt.Errorf("%w: file is %s, expected %s", ErrArchMismatch, h.Arch, expectArch)
	}
	if expectSort != SortAny && h.UnitSort() != expectSort {
		return fmt.Errorf("%w: file is %s, expected %s", ErrUnitSortMismatch, h.UnitSort(), expectSort)
	}
	if err := f.checkLocators(); err != nil {
		return err
	}
	return f.parseTOC()
}

func (f *File) checkLocators() error {
	size := uint64(len(f.data))
	h := &f.header

	stStart := uint64(h.StringTableOffset)
	stEnd := stStart + uint64(h.StringTableSize)
	if h.StringTableSize > 0 && stStart < contentsStart {
		return fmt.Errorf("%w: string table overlaps header", ErrMalformed)
	}
	// A zero-size table still carries an offset; it must stay sliceable.
	if stEnd < stStart || stEnd > size {
		return fmt.Errorf("%w: string table [%d, %d) out of bounds", ErrMalformed, stStart, stEnd)
	}

	tocStart := uint64(h.TOCOffset)
	tocEnd := tocStart + uint64(h.PartitionCount)*partitionEntrySize
	if h.PartitionCount > 0 {
		if tocStart < contentsStart {
			return fmt.Errorf("%w: partition table overlaps header", ErrMalformed)
		}
		if tocEnd < tocStart || tocEnd > size {
			return fmt.Errorf("%w: partition table [%d, %d) out of bounds", ErrMalformed, tocStart, tocEnd)
		}
	}
	return nil
}

func (f *File) parseTOC() error {
	h := &f.header
	entries := make([]PartitionEntry, h.PartitionCount)
	tocStart := uint64(h.TOCOffset)
	tocEnd := tocStart + uint64(h.PartitionCount)*partitionEntrySize

	for i := range entries {
		b := f.data[int(h.TOCOffset)+i*partitionEntrySize:]
		entries[i] = PartitionEntry{
			Name:        TextOffset(binary.LittleEndian.Uint32(b)),
			Offset:      binary.LittleEndian.Uint32(b[4:]),
			Cardinality: binary.LittleEndian.Uint32(b[8:]),
			EntrySize:   binary.LittleEndian.Uint32(b[12:]),
		}

		p := &entries[i]
		byteLen := p.ByteLen()
		if byteLen == 0 {
			continue
		}
		start := uint64(p.Offset)
		end := start + byteLen
		if start < contentsStart {
			return fmt.Errorf("%w: partition %d overlaps header", ErrMalformed, i)
		}
		if end < start || end > uint64(len(f.data)) {
			return fmt.Errorf("%w: partition %d [%d, %d) out of bounds", ErrMalformed, i, start, end)
		}
		if rangesOverlap(start, end, tocStart, tocEnd) {
			return fmt.Errorf("%w: partition %d overlaps the partition table", ErrMalformed, i)
		}
	}
	f.partitions = entries
	return nil
}

// Partitions returns the partition directory in on-disk order.
// Validate must have succeeded.
func (f *File) Partitions() []PartitionEntry {
	return f.partitions
}

// PartitionByName scans the directory for the partition whose resolved
// name equals name. Entries whose name offset does not resolve are
// skipped.
func (f *File) PartitionByName(name string) (PartitionEntry, bool) {
	for _, p := range f.partitions {
		s, err := f.String(p.Name)
		if err != nil {
			continue
		}
		if string(s) == name {
			return p, true
		}
	}
	return PartitionEntry{}, false
}

// SourceFiles decodes the record array of a "name.source-file"
// partition. The descriptor's entry size must match the record
// layout.
func (f *File) SourceFiles(p PartitionEntry) ([]SourceFileRecord, error) {
	if p.EntrySize != sourceFileRecordSize {
		return nil, fmt.Errorf("%w: source-file entry size %d, want %d", ErrMalformed, p.EntrySize, sourceFileRecordSize)
	}
	raw, err := f.partitionBytes(p)
	if err != nil {
		return nil, err
	}
	records := make([]SourceFileRecord, p.Cardinality)
	for i := range records {
		b := raw[i*sourceFileRecordSize:]
		records[i] = SourceFileRecord{
			Path:  TextOffset(binary.LittleEndian.Uint32(b)),
			Guard: TextOffset(binary.LittleEndian.Uint32(b[4:])),
		}
	}
	return records, nil
}

// partitionBytes returns the raw record array of a partition.
func (f *File) partitionBytes(p PartitionEntry) ([]byte, error) {
	byteLen := p.ByteLen()
	if byteLen == 0 {
		return nil, nil
	}
	start := uint64(p.Offset)
	end := start + byteLen
	if end < start || end > uint64(len(f.data)) || start < contentsStart {
		return nil, fmt.Errorf("%w: partition [%d, %d) out of bounds", ErrMalformed, start, end)
	}
	return f.data[start:end], nil
}

// stringTable returns the string-table region. Bounds were checked by
// Validate.
func (f *File) stringTable() []byte {
	h := &f.header
	return f.data[h.StringTableOffset : uint64(h.StringTableOffset)+uint64(h.StringTableSize)]
}

// String resolves a text offset to its NUL-terminated payload,
// excluding the terminator. The returned slice aliases the container;
// callers that mutate must go through SetString.
func (f *File) String(off TextOffset) ([]byte, error) {
	table := f.stringTable()
	if uint64(off) >= uint64(len(table)) {
		return nil, fmt.Errorf("%w: offset %d outside table of %d bytes", ErrBadStringIndex, off, len(table))
	}
	i := bytes.IndexByte(table[off:], 0)
	if i < 0 {
		return nil, fmt.Errorf("%w: offset %d has no terminator before end of table", ErrBadStringIndex, off)
	}
	return table[off : int(off)+i], nil
}

// SetString overwrites the string at off in place. The replacement
// must be no longer than the stored string: an equal-length write
// keeps the existing terminator, a shorter one writes a new terminator
// and strands the tail as dead bytes inside the table. Offsets of all
// other strings are unaffected; the container is untouched on failure.
//
// The caller is responsible for ensuring no other text offset aliases
// into the replaced region.
func (f *File) SetString(off TextOffset, repl []byte) error {
	cur, err := f.String(off)
	if err != nil {
		return err
	}
	if len(repl) > len(cur) {
		return fmt.Errorf("%w: %d bytes over a %d-byte string", ErrStringGrowth, len(repl), len(cur))
	}
	table := f.stringTable()
	n := copy(table[off:], repl)
	if n < len(cur) {
		table[int(off)+n] = 0
	}
	return nil
}

func rangesOverlap(a0, a1, b0, b1 uint64) bool {
	// half-open ranges [a0,a1) and [b0,b1)
	return a0 < b1 && b0 < a1
}
