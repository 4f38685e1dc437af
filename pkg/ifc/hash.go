package ifc

import "crypto/sha256"

// ContentHash computes the SHA-256 digest that seals an IFC buffer:
// every byte after the signature and the stored hash slot. The buffer
// must be at least contentsStart bytes; a body of zero length hashes
// to the SHA-256 of the empty input.
func ContentHash(data []byte) [hashSize]byte {
	return sha256.Sum256(data[contentsStart:])
}

// StoredHash returns the digest currently recorded in the hash slot.
func (f *File) StoredHash() [hashSize]byte {
	var h [hashSize]byte
	copy(h[:], f.data[sigSize:contentsStart])
	return h
}

// VerifyContentIntegrity recomputes the content hash and compares it
// to the stored slot. On mismatch it returns an *IntegrityError
// carrying both digests.
func (f *File) VerifyContentIntegrity() error {
	computed := ContentHash(f.data)
	stored := f.StoredHash()
	if stored != computed {
		return &IntegrityError{Stored: stored, Computed: computed}
	}
	return nil
}

// ResetContentHash reseals the container: it recomputes the SHA-256
// of the current contents and stores it in the hash slot. Idempotent
// when nothing has been mutated since the last reseal. Callers must
// make this the final mutation before the mapping is released.
func (f *File) ResetContentHash() {
	sum := ContentHash(f.data)
	copy(f.data[sigSize:contentsStart], sum[:])
}
