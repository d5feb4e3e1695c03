package catalog

import (
	"log/slog"
	"path/filepath"
	"slices"

	"titledb/internal/logging"
	"titledb/internal/title"
	"titledb/internal/titleid"
)

// Set is the record collection backing one partition file.
type Set struct {
	records  map[title.Key]*title.Record
	modified bool
}

func newSet() *Set {
	return &Set{records: make(map[title.Key]*title.Record)}
}

// Len returns the number of records.
func (s *Set) Len() int { return len(s.records) }

// Modified reports whether the set changed since it was loaded or persisted.
func (s *Set) Modified() bool { return s.modified }

// Records returns the records sorted by key.
func (s *Set) Records() []*title.Record {
	out := make([]*title.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b *title.Record) int { return a.Compare(b) })
	return out
}

// Lookup returns the record stored under key.
func (s *Set) Lookup(key title.Key) (*title.Record, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

// AddOptions controls how Catalog.AddWith stores a record.
type AddOptions struct {
	// Partition forces the record into a partition. None keeps the record's
	// own classification.
	Partition titleid.Partition
	// Overwrite replaces an existing record with the same key.
	Overwrite bool
}

// Catalog is the in-memory view of every partition file in a data directory.
type Catalog struct {
	dir    string
	sets   map[titleid.Partition]*Set
	logger *slog.Logger
}

// New returns an empty catalog rooted at dir.
func New(dir string, logger *slog.Logger) *Catalog {
	c := &Catalog{
		dir:    dir,
		sets:   make(map[titleid.Partition]*Set, len(titleid.Partitions())),
		logger: logging.NewComponentLogger(logger, "catalog"),
	}
	for _, p := range titleid.Partitions() {
		c.sets[p] = newSet()
	}
	return c
}

// Dir returns the data directory.
func (c *Catalog) Dir() string { return c.dir }

// Path returns the file backing p.
func (c *Catalog) Path(p titleid.Partition) string {
	return filepath.Join(c.dir, p.FileName())
}

// Partitions lists every storable partition.
func (c *Catalog) Partitions() []titleid.Partition { return titleid.Partitions() }

// Set returns the set for p, or nil for None.
func (c *Catalog) Set(p titleid.Partition) *Set { return c.sets[p] }

// Records returns the records of p sorted by key.
func (c *Catalog) Records(p titleid.Partition) []*title.Record {
	if s := c.sets[p]; s != nil {
		return s.Records()
	}
	return nil
}

// Len returns the record count of p.
func (c *Catalog) Len(p titleid.Partition) int {
	if s := c.sets[p]; s != nil {
		return s.Len()
	}
	return 0
}

// Modified reports whether p has unsaved changes.
func (c *Catalog) Modified(p titleid.Partition) bool {
	if s := c.sets[p]; s != nil {
		return s.modified
	}
	return false
}

// Add stores rec in its own partition, replacing any record with the same
// key.
func (c *Catalog) Add(rec *title.Record) bool {
	return c.AddWith(rec, AddOptions{Overwrite: true})
}

// AddWith stores rec according to opts. It returns false when the record was
// dropped: it has no partition, or an existing record was kept.
func (c *Catalog) AddWith(rec *title.Record, opts AddOptions) bool {
	if rec == nil {
		return false
	}
	if opts.Partition != titleid.None {
		rec.AssignPartition(opts.Partition)
	}
	set := c.sets[rec.Partition()]
	if set == nil {
		return false
	}
	key := rec.Key()
	if _, exists := set.records[key]; exists && !opts.Overwrite {
		return false
	}
	set.records[key] = rec
	set.modified = true
	return true
}

// AddAll stores every record and returns how many keys were new.
func (c *Catalog) AddAll(recs []*title.Record) int {
	added := 0
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		set := c.sets[rec.Partition()]
		isNew := set != nil
		if isNew {
			_, exists := set.records[rec.Key()]
			isNew = !exists
		}
		if c.Add(rec) && isNew {
			added++
		}
	}
	return added
}
