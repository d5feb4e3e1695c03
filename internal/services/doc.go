// Package services holds the plumbing shared by the eShop service clients.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper, so callers can classify
//     failures (not found, forbidden, integrity, malformed, transient) with
//     errors.Is regardless of which client produced them.
//   - StatusError, the typed form of a non-2xx HTTP response, and GetBody,
//     the single request path every client uses.
//   - Context helpers that stamp run ids, pipeline names, and regions so log
//     lines emitted deep inside a crawl carry the same correlation fields.
//
// The per-service clients live in subpackages (samurai, ninja, tagaya, ccs).
package services
