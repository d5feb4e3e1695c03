// Package sizecache persists computed content sizes of versioned titles in
// SQLite so repeated runs do not download the same metadata twice. Only
// update identifiers are cached: their metadata is immutable per version,
// whereas unversioned downloads can change between runs.
package sizecache
