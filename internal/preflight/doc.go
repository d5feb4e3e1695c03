// Package preflight provides readiness checks for the credential files, the
// data directory, and the eShop endpoints titledb depends on.
//
// These checks run in two contexts:
//   - The runner calls Local before any network activity. A failure stops
//     the run before a half-configured crawl wastes an hour of requests.
//   - The CLI "titledb check" command calls RunAll, which also decodes the
//     credential and probes every endpoint.
package preflight
