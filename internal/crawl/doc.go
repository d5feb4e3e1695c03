// Package crawl implements the eShop crawl pipelines.
//
// An Orchestrator wires the service clients (through small interfaces so
// tests can substitute fakes) to the retry policy and a progress reporter and
// exposes one method per pipeline:
//
//   - FetchTitles pages through every listing region of a storefront,
//     enriches each released title, and merges titles listed everywhere into
//     one record with region ALL.
//   - FetchUpdates walks the numbered Wii U update lists after a cursor and
//     returns the new cursor alongside the records.
//   - FetchUpdates3DS decodes the binary 3DS version list.
//   - BackfillSizes computes missing sizes from title metadata.
//   - ProbeDLCs looks for downloadable content of known games.
//
// Every remote call goes through the retry policy. Expected absences (a
// forbidden update list, a missing TMD) are typed outcomes; anything that
// survives the retries aborts the pipeline.
package crawl
