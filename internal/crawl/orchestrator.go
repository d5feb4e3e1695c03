package crawl

import (
	"context"
	"errors"
	"log/slog"

	"github.com/facebookgo/clock"

	"titledb/internal/logging"
	"titledb/internal/progress"
	"titledb/internal/retry"
	"titledb/internal/services/ninja"
	"titledb/internal/services/samurai"
	"titledb/internal/services/tagaya"
	"titledb/internal/title"
	"titledb/internal/titleid"
)

// Listing pages through a storefront.
type Listing interface {
	Count(ctx context.Context, region title.Region, shop samurai.Shop) (int, error)
	Titles(ctx context.Context, region title.Region, shop samurai.Shop, limit, offset int) (samurai.Page, error)
}

// Enricher resolves commerce details for a listed title.
type Enricher interface {
	ECInfo(ctx context.Context, region title.Region, eshopID string) (ninja.ECInfo, error)
}

// UpdateLists serves the numbered Wii U update lists.
type UpdateLists interface {
	LatestVersion(ctx context.Context) (int, error)
	VersionList(ctx context.Context, n int) ([]tagaya.Update, error)
}

// VersionListSource serves the binary 3DS version list.
type VersionListSource interface {
	VersionList(ctx context.Context) ([]byte, error)
}

// DescriptorSource serves TMD blobs.
type DescriptorSource interface {
	TMD(ctx context.Context, id titleid.ID, version string) ([]byte, error)
}

// SizeCache remembers computed sizes between runs.
type SizeCache interface {
	Lookup(ctx context.Context, id titleid.ID, version string) (uint64, bool, error)
	Store(ctx context.Context, id titleid.ID, version string, size uint64) error
}

// Config wires an Orchestrator.
type Config struct {
	Listing      Listing
	Enricher     Enricher
	UpdateLists  UpdateLists
	VersionLists VersionListSource
	Descriptors  DescriptorSource
	// SizeCache is optional.
	SizeCache SizeCache

	Policy   *retry.Policy
	Progress progress.Reporter
	Clock    clock.Clock
	Logger   *slog.Logger

	// Regions are the listing regions crawled by FetchTitles. Empty means
	// every listing region.
	Regions  []title.Region
	PageSize int
}

// Orchestrator runs the crawl pipelines.
type Orchestrator struct {
	listing      Listing
	enricher     Enricher
	updateLists  UpdateLists
	versionLists VersionListSource
	descriptors  DescriptorSource
	sizes        SizeCache

	policy   *retry.Policy
	progress progress.Reporter
	clock    clock.Clock
	logger   *slog.Logger

	regions  []title.Region
	pageSize int
}

// New validates cfg and builds an Orchestrator. Sources may be nil when the
// pipelines that need them are never called.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Policy == nil {
		return nil, errors.New("crawl: retry policy required")
	}
	o := &Orchestrator{
		listing:      cfg.Listing,
		enricher:     cfg.Enricher,
		updateLists:  cfg.UpdateLists,
		versionLists: cfg.VersionLists,
		descriptors:  cfg.Descriptors,
		sizes:        cfg.SizeCache,
		policy:       cfg.Policy,
		progress:     cfg.Progress,
		clock:        cfg.Clock,
		logger:       logging.NewComponentLogger(cfg.Logger, "crawl"),
		regions:      append([]title.Region(nil), cfg.Regions...),
		pageSize:     cfg.PageSize,
	}
	if o.progress == nil {
		o.progress = progress.Nop{}
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if len(o.regions) == 0 {
		o.regions = title.ListingRegions()
	}
	if o.pageSize < 1 || o.pageSize > samurai.MaxPageSize {
		o.pageSize = samurai.MaxPageSize
	}
	return o, nil
}

// Regions returns the listing regions crawled by FetchTitles.
func (o *Orchestrator) Regions() []title.Region {
	return append([]title.Region(nil), o.regions...)
}

func (o *Orchestrator) loggerFor(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, o.logger)
}

func missingSource(name string) error {
	return errors.New("crawl: " + name + " source not configured")
}
