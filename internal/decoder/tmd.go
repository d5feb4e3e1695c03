package decoder

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"titledb/internal/titleid"
)

// TMD layout offsets.
const (
	TMDTitleIDOffset      = 0x18C
	TMDTitleVersionOffset = 0x1DC
	TMDContentCountOffset = 0x1DE
	TMDContentTableOffset = 0xB04
	TMDContentEntrySize   = 0x30

	contentHeaderSize = 8
)

// descriptor is the subset of a TMD needed to size a title.
type descriptor struct {
	id           titleid.ID
	version      uint16
	contentSizes []uint64
}

func (d descriptor) totalSize() uint64 {
	var total uint64
	for _, size := range d.contentSizes {
		total += size
	}
	return total
}

// ContentSize validates that blob describes want (and, for updates, the
// requested version) and returns the total size of its contents. The content
// table is only read once the header matches the request.
func ContentSize(blob []byte, want titleid.ID, version string) (uint64, error) {
	desc, count, err := parseHeader(blob)
	if err != nil {
		return 0, err
	}
	if desc.id != want {
		return 0, fmt.Errorf("descriptor is for %s, requested %s: %w", desc.id, want, ErrIntegrityMismatch)
	}
	if want.IsUpdate() {
		if got := strconv.Itoa(int(desc.version)); got != version {
			return 0, fmt.Errorf("descriptor of %s is version %s, requested %q: %w", want, got, version, ErrIntegrityMismatch)
		}
	}
	if desc.contentSizes, err = contentSizes(blob, count); err != nil {
		return 0, err
	}
	return desc.totalSize(), nil
}

func parseHeader(blob []byte) (descriptor, int, error) {
	if len(blob) < TMDContentCountOffset+2 {
		return descriptor{}, 0, fmt.Errorf("descriptor header needs %d bytes, got %d: %w", TMDContentCountOffset+2, len(blob), ErrTruncated)
	}
	raw := binary.BigEndian.Uint64(blob[TMDTitleIDOffset:])
	id, err := titleid.FromUint64(raw)
	if err != nil {
		return descriptor{}, 0, fmt.Errorf("descriptor title id %016X: %w", raw, ErrIntegrityMismatch)
	}
	desc := descriptor{
		id:      id,
		version: binary.BigEndian.Uint16(blob[TMDTitleVersionOffset:]),
	}
	return desc, int(binary.BigEndian.Uint16(blob[TMDContentCountOffset:])), nil
}

func contentSizes(blob []byte, count int) ([]uint64, error) {
	end := TMDContentTableOffset + count*TMDContentEntrySize
	if len(blob) < end {
		return nil, fmt.Errorf("content table of %d entries needs %d bytes, got %d: %w", count, end, len(blob), ErrTruncated)
	}
	sizes := make([]uint64, 0, count)
	for i := range count {
		entry := blob[TMDContentTableOffset+i*TMDContentEntrySize:]
		sizes = append(sizes, binary.BigEndian.Uint64(entry[contentHeaderSize:]))
	}
	return sizes, nil
}
