package decoder

import (
	"encoding/binary"
	"fmt"

	"titledb/internal/title"
	"titledb/internal/titleid"
)

// Version list layout.
const (
	VersionListMagic       = 0x01
	VersionListEntryOffset = 0x10
	VersionListEntrySize   = 16
)

// Entry is one row of the 3DS version list.
type Entry struct {
	ID      titleid.ID
	Version uint32
}

// VersionList decodes blob and returns its entries in order. Rows whose
// identifier is unknown or classifies as a 3DS game are dropped.
func VersionList(blob []byte) ([]Entry, error) {
	if len(blob) == 0 || blob[0] != VersionListMagic {
		return nil, fmt.Errorf("missing header byte 0x%02x: %w", VersionListMagic, ErrMalformedVersionList)
	}
	if len(blob) < VersionListEntryOffset {
		return nil, fmt.Errorf("header needs %d bytes, got %d: %w", VersionListEntryOffset, len(blob), ErrMalformedVersionList)
	}
	table := blob[VersionListEntryOffset:]
	if len(table)%VersionListEntrySize != 0 {
		return nil, fmt.Errorf("trailing %d bytes after last entry: %w", len(table)%VersionListEntrySize, ErrMalformedVersionList)
	}

	entries := make([]Entry, 0, len(table)/VersionListEntrySize)
	for offset := 0; offset < len(table); offset += VersionListEntrySize {
		row := table[offset : offset+VersionListEntrySize]
		id, err := titleid.FromUint64(binary.BigEndian.Uint64(row))
		if err != nil {
			continue
		}
		switch id.Partition() {
		case titleid.None, titleid.Games3DS:
			continue
		}
		entries = append(entries, Entry{ID: id, Version: binary.BigEndian.Uint32(row[8:])})
	}
	return entries, nil
}

// UpdateRecords converts entries into catalog records.
func UpdateRecords(entries []Entry) []*title.Record {
	records := make([]*title.Record, 0, len(entries))
	for _, entry := range entries {
		rec := title.New(entry.ID)
		rec.SetVersion(int(entry.Version))
		records = append(records, rec)
	}
	return records
}
