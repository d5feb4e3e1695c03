package testsupport

import (
	"encoding/binary"
	"strconv"
	"testing"
)

// TMD layout used by the content descriptor builder.
const (
	tmdTitleIDOffset      = 0x18C
	tmdTitleVersionOffset = 0x1DC
	tmdContentCountOffset = 0x1DE
	tmdContentTableOffset = 0xB04
	tmdContentEntrySize   = 0x30
)

// TMD builds a minimal title metadata blob for titleID at version whose
// content table lists sizes.
func TMD(t testing.TB, titleID string, version uint16, sizes ...uint64) []byte {
	t.Helper()

	id, err := strconv.ParseUint(titleID, 16, 64)
	if err != nil {
		t.Fatalf("parse title id %q: %v", titleID, err)
	}
	blob := make([]byte, tmdContentTableOffset+len(sizes)*tmdContentEntrySize)
	binary.BigEndian.PutUint64(blob[tmdTitleIDOffset:], id)
	binary.BigEndian.PutUint16(blob[tmdTitleVersionOffset:], version)
	binary.BigEndian.PutUint16(blob[tmdContentCountOffset:], uint16(len(sizes)))
	for i, size := range sizes {
		entry := blob[tmdContentTableOffset+i*tmdContentEntrySize:]
		binary.BigEndian.PutUint32(entry, uint32(i))
		binary.BigEndian.PutUint16(entry[4:], uint16(i))
		binary.BigEndian.PutUint64(entry[8:], size)
		for j := range 32 {
			entry[16+j] = byte(i + j)
		}
	}
	return blob
}

// VersionEntry is one row for VersionList.
type VersionEntry struct {
	TitleID string
	Version uint32
}

// VersionList builds a 3DS version list blob holding entries.
func VersionList(t testing.TB, entries ...VersionEntry) []byte {
	t.Helper()

	blob := make([]byte, 0x10+16*len(entries))
	blob[0] = 0x01
	for i, entry := range entries {
		id, err := strconv.ParseUint(entry.TitleID, 16, 64)
		if err != nil {
			t.Fatalf("parse title id %q: %v", entry.TitleID, err)
		}
		row := blob[0x10+16*i:]
		binary.BigEndian.PutUint64(row, id)
		binary.BigEndian.PutUint32(row[8:], entry.Version)
		binary.BigEndian.PutUint32(row[12:], 0xFFFFFFFF)
	}
	return blob
}
