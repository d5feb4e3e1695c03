// Package catalog holds the partitioned title catalog: one record set per
// partition file, keyed by (title id, version), with per-partition dirty
// tracking so only partitions touched during a run are rewritten.
//
// Load reads every partition file from the data directory, tolerating the
// value conventions of older files. Persist serializes modified partitions
// as two-space indented JSON arrays sorted by key, skips files whose bytes
// would not change, and consults injected callbacks before creating or
// replacing `.bak` backups. The cursor helpers read and write the
// incremental update position stored beside the partitions.
//
// A Catalog is not safe for concurrent mutation.
package catalog
