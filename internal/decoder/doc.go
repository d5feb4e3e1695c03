// Package decoder parses the two binary formats served by the eShop content
// endpoints: title metadata (TMD) blobs, from which the total content size of
// a title is computed, and the 3DS version list, which enumerates every
// update currently published.
//
// Every multi-byte integer in both formats is big-endian. A descriptor for the
// wrong title and a malformed version list wrap permanent markers
// (services.ErrIntegrity, services.ErrCorrupt); a truncated descriptor wraps
// services.ErrMalformed and is refetched.
package decoder
