package title

import (
	"strconv"

	"titledb/internal/titleid"
)

// Key is the identity of a record.
type Key struct {
	ID      titleid.ID
	Version int
}

// Compare orders keys by identifier, then version.
func (k Key) Compare(other Key) int {
	if c := k.ID.Compare(other.ID); c != 0 {
		return c
	}
	switch {
	case k.Version < other.Version:
		return -1
	case k.Version > other.Version:
		return 1
	default:
		return 0
	}
}

// slot is either unclassified or holds the partition chosen the first time
// the record was classified.
type slot struct {
	classified bool
	partition  titleid.Partition
}

// Record is one catalog entry.
type Record struct {
	EshopID     string
	IconURL     string
	Name        string
	Platform    int
	ProductCode string
	Region      Region
	Size        uint64
	PreLoad     bool

	id         titleid.ID
	version    int
	hasVersion bool
	slot       slot
}

// New returns a record for id with no version.
func New(id titleid.ID) *Record {
	r := &Record{}
	r.SetID(id)
	return r
}

// ID returns the record identifier.
func (r *Record) ID() titleid.ID { return r.id }

// SetID replaces the identifier. The first identifier that classifies to a
// real partition fixes the record's partition for its lifetime.
func (r *Record) SetID(id titleid.ID) {
	r.id = id
	if r.slot.classified {
		return
	}
	if p := id.Partition(); p != titleid.None {
		r.slot = slot{classified: true, partition: p}
	}
}

// AssignPartition pins the record to p. A None partition is ignored.
func (r *Record) AssignPartition(p titleid.Partition) {
	if p == titleid.None {
		return
	}
	r.slot = slot{classified: true, partition: p}
}

// Partition returns the pinned partition, or the identifier's classification
// while the record is still unclassified.
func (r *Record) Partition() titleid.Partition {
	if r.slot.classified {
		return r.slot.partition
	}
	return r.id.Partition()
}

// Classified reports whether the partition has been pinned.
func (r *Record) Classified() bool { return r.slot.classified }

// Version returns the title version, or -1 when absent or when the record
// lives in a game partition.
func (r *Record) Version() int {
	if !r.hasVersion || r.Partition().IsGamePartition() {
		return -1
	}
	return r.version
}

// SetVersion stores v. Negative values clear the version.
func (r *Record) SetVersion(v int) {
	if v < 0 {
		r.version, r.hasVersion = 0, false
		return
	}
	r.version, r.hasVersion = v, true
}

// VersionString is the decimal version, or "" when Version is negative.
func (r *Record) VersionString() string {
	v := r.Version()
	if v < 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// SetVersionString parses a decimal version. Empty input clears the version
// and unparsable input is ignored.
func (r *Record) SetVersionString(s string) {
	if s == "" {
		r.SetVersion(-1)
		return
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return
	}
	r.SetVersion(v)
}

// DiscOnly reports a game with no downloadable content size.
func (r *Record) DiscOnly() bool {
	return r.Partition().IsGamePartition() && r.Size == 0
}

// Key returns the record identity.
func (r *Record) Key() Key {
	return Key{ID: r.id, Version: r.Version()}
}

// Equal compares identity only.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Key() == other.Key()
}

// Compare orders records by identity.
func (r *Record) Compare(other *Record) int {
	return r.Key().Compare(other.Key())
}

// Clone returns an independent copy of r.
func (r *Record) Clone() *Record {
	cp := *r
	return &cp
}
