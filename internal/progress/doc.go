// Package progress reports crawl progress. Pipelines talk to a Reporter;
// the CLI picks a go-pretty tracker when stdout is a terminal and a sampled
// log reporter otherwise.
package progress
