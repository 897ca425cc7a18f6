package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Fingerprint folds the xxHash64 of name into 32 bits. It identifies a registered
// user type on the wire.
func Fingerprint(name string) uint32 {
	id := ID(name)
	return uint32(id) ^ uint32(id>>32)
}
