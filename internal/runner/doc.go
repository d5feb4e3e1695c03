// Package runner executes one catalog update run.
//
// Run is the only entry point. It composes the configuration, the eShop
// clients, the catalog, and the crawl pipelines in a fixed order:
//
//  1. preflight checks (credential files, data directory), before any
//     network activity
//  2. the advisory run lock on the data directory
//  3. loading every catalog partition
//  4. reading the Wii U update cursor, optionally discarding it
//  5. titles (Wii U, then 3DS), updates (Wii U incremental, then the 3DS
//     version list), DLCs (from the Wii U games, then the 3DS games)
//  6. persisting modified partitions
//  7. storing the new cursor
//
// Partitions and the cursor are only written after every selected pipeline
// succeeded. Interactive decisions go through the Prompter boundary.
package runner
