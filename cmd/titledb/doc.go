// Package main hosts the titledb CLI.
//
// The Cobra command tree resolves configuration once per invocation and hands
// it to the internal packages: update runs the crawl pipelines through
// internal/runner, stats and cursor read the catalog on disk, check runs the
// preflight probes, and config scaffolds or validates the TOML file.
//
// Keep commands thin. Behaviour belongs in the internal packages so it can be
// tested without a terminal.
package main
