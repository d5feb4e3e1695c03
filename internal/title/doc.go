// Package title models one catalog entry and its legacy JSON projection.
//
// A Record holds the metadata gathered for a single store title: the store
// item id, display fields, content size, identifier, and version. Records are
// identified by (identifier, version) only; every other field is metadata that
// later pipeline stages may fill in or overwrite.
//
// The partition a record belongs to is computed once from its identifier and
// then kept, so a record loaded from one catalog file is always saved back to
// that file even when a later identifier would classify differently.
//
// MarshalJSON renders the object layout consumed by existing catalog readers,
// including their "unknown" sentinels and an ASCII-only string escaping.
package title
