package section

import (
	"fmt"

	"github.com/arloliu/typebin/errs"
	"github.com/arloliu/typebin/format"
)

// VersionAndFlags is the first byte of every DataTypeHeader.
//
//	bit 0-1: compression method (format.CompressionType)
//	bit 2:   shuffled
//	bit 3:   diffed (delta-encoded)
//	bit 4:   binary payload; when clear the payload is a fallback encoding and
//	         every other field is advisory
//	bit 5-7: converter version
type VersionAndFlags uint8

// NewVersionAndFlags returns flags for a binary payload of the given converter version.
func NewVersionAndFlags(version uint8) (VersionAndFlags, error) {
	var f VersionAndFlags
	if err := f.SetVersion(version); err != nil {
		return 0, err
	}
	f.SetBinary(true)

	return f, nil
}

// Version returns the converter version.
func (f VersionAndFlags) Version() uint8 {
	return uint8(f&VersionMask) >> VersionShift
}

// SetVersion sets the converter version, which must be at most MaxVersion.
func (f *VersionAndFlags) SetVersion(version uint8) error {
	if version > MaxVersion {
		return fmt.Errorf("%w: %d > %d", errs.ErrInvalidVersion, version, MaxVersion)
	}

	*f = (*f &^ VersionMask) | VersionAndFlags(version<<VersionShift)

	return nil
}

// Compression returns the compression method from bits 0-1.
func (f VersionAndFlags) Compression() format.CompressionType {
	return format.CompressionType(f & CompressionMask)
}

// SetCompression sets the compression method in bits 0-1.
func (f *VersionAndFlags) SetCompression(c format.CompressionType) {
	*f = (*f &^ CompressionMask) | VersionAndFlags(uint8(c)&CompressionMask)
}

// IsShuffled returns whether the payload bytes were shuffled before compression.
func (f VersionAndFlags) IsShuffled() bool {
	return f&ShuffledMask != 0
}

// SetShuffled sets or clears the shuffled flag.
func (f *VersionAndFlags) SetShuffled(enabled bool) {
	f.set(ShuffledMask, enabled)
}

// IsDiffed returns whether the payload was delta-encoded.
func (f VersionAndFlags) IsDiffed() bool {
	return f&DiffedMask != 0
}

// SetDiffed sets or clears the diffed flag.
func (f *VersionAndFlags) SetDiffed(enabled bool) {
	f.set(DiffedMask, enabled)
}

// IsBinary returns whether the payload is a binary encoding.
func (f VersionAndFlags) IsBinary() bool {
	return f&BinaryMask != 0
}

// SetBinary sets or clears the binary flag.
func (f *VersionAndFlags) SetBinary(enabled bool) {
	f.set(BinaryMask, enabled)
}

func (f *VersionAndFlags) set(mask VersionAndFlags, enabled bool) {
	if enabled {
		*f |= mask
	} else {
		*f &^= mask
	}
}

func (f VersionAndFlags) String() string {
	return fmt.Sprintf("v%d binary=%t compression=%s shuffled=%t diffed=%t",
		f.Version(), f.IsBinary(), f.Compression(), f.IsShuffled(), f.IsDiffed())
}
