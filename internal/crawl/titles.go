package crawl

import (
	"context"
	"fmt"
	"time"

	"titledb/internal/logging"
	"titledb/internal/retry"
	"titledb/internal/services"
	"titledb/internal/services/ninja"
	"titledb/internal/services/samurai"
	"titledb/internal/title"
	"titledb/internal/titleid"
)

const releaseDateLayout = "2006-01-02"

// excludedPlatforms are listing platforms that never carry a real title:
// system update pseudo-titles and one unidentified code.
var excludedPlatforms = map[int]struct{}{
	63:   {},
	1003: {},
	143:  {},
}

// Excluded reports whether the listing platform is skipped by FetchTitles.
func Excluded(platform int) bool {
	_, ok := excludedPlatforms[platform]
	return ok
}

// FetchTitles crawls every configured region of shop and returns the
// enriched, region-merged records.
func (o *Orchestrator) FetchTitles(ctx context.Context, shop samurai.Shop) ([]*title.Record, error) {
	if o.listing == nil {
		return nil, missingSource("listing")
	}
	if o.enricher == nil {
		return nil, missingSource("enrichment")
	}
	ctx = services.WithPipeline(ctx, "titles-"+shop.String())
	logger := o.loggerFor(ctx)

	counts := make(map[title.Region]int, len(o.regions))
	total := 0
	for _, region := range o.regions {
		count, _, err := retry.Do(ctx, o.policy, fmt.Sprintf("count %s titles in %s", shop, region),
			func(ctx context.Context) (int, error) { return o.listing.Count(ctx, region, shop) },
			retry.Never)
		if err != nil {
			return nil, err
		}
		counts[region] = count
		total += count
	}
	logger.Info("listing sized",
		logging.String("shop", shop.String()),
		logging.Int("titles", total),
		logging.Int("regions", len(o.regions)),
	)

	o.progress.Title(fmt.Sprintf("Downloading metadata for %d %s titles", total, shop))
	o.progress.Reset(total)
	defer o.progress.Done()

	today := o.today()
	var records []*title.Record
	for _, region := range o.regions {
		regionRecords, err := o.crawlRegion(services.WithRegion(ctx, region.String()), shop, region, counts[region], today)
		if err != nil {
			return nil, err
		}
		records = append(records, regionRecords...)
	}

	merged := MergeRegions(records)
	logger.Info("titles crawled",
		logging.String(logging.FieldEventType, "titles_crawled"),
		logging.String("shop", shop.String()),
		logging.Int("records", len(merged)),
	)
	return merged, nil
}

func (o *Orchestrator) crawlRegion(ctx context.Context, shop samurai.Shop, region title.Region, count int, today time.Time) ([]*title.Record, error) {
	logger := o.loggerFor(ctx)
	var records []*title.Record
	for offset := 0; offset < count; offset += o.pageSize {
		page, _, err := retry.Do(ctx, o.policy, fmt.Sprintf("list %s titles in %s at offset %d", shop, region, offset),
			func(ctx context.Context) (samurai.Page, error) {
				return o.listing.Titles(ctx, region, shop, o.pageSize, offset)
			},
			retry.Never)
		if err != nil {
			return nil, err
		}
		if len(page.Items) == 0 {
			logger.Debug("listing ended before advertised count",
				logging.Int("offset", offset),
				logging.Int("count", count),
			)
			break
		}
		for _, item := range page.Items {
			o.progress.Step(item.Name)
			if !Released(item.ReleaseDate, today) {
				logger.Debug("skipping unreleased title",
					logging.String("eshop_id", item.EshopID),
					logging.String("release_date", item.ReleaseDate),
				)
				continue
			}
			if Excluded(item.Platform) {
				continue
			}
			rec, err := o.enrich(ctx, region, item)
			if err != nil {
				return nil, err
			}
			if rec != nil {
				records = append(records, rec)
			}
		}
	}
	return records, nil
}

// enrich returns nil when the item does not resolve to a catalog partition.
func (o *Orchestrator) enrich(ctx context.Context, region title.Region, item samurai.Item) (*title.Record, error) {
	info, _, err := retry.Do(ctx, o.policy, fmt.Sprintf("fetch ec_info for %s", item.EshopID),
		func(ctx context.Context) (ninja.ECInfo, error) { return o.enricher.ECInfo(ctx, region, item.EshopID) },
		retry.Never)
	if err != nil {
		return nil, err
	}
	id, err := titleid.Parse(info.TitleID)
	if err != nil || id.Partition() == titleid.None {
		o.loggerFor(ctx).Debug("discarding unclassified title",
			logging.String("eshop_id", item.EshopID),
			logging.String(logging.FieldTitleID, info.TitleID),
		)
		return nil, nil
	}
	rec := title.New(id)
	rec.EshopID = item.EshopID
	rec.IconURL = item.IconURL
	rec.Name = item.Name
	rec.Platform = item.Platform
	rec.ProductCode = item.ProductCode
	rec.Region = region
	rec.Size = info.ContentSize
	rec.SetVersionString(info.Version)
	return rec, nil
}

func (o *Orchestrator) today() time.Time {
	now := o.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Released reports whether a listing release date is on or before today. An
// empty or unparsable date counts as released.
func Released(date string, today time.Time) bool {
	if date == "" {
		return true
	}
	released, err := time.Parse(releaseDateLayout, date)
	if err != nil {
		return true
	}
	return !released.After(today)
}

// MergeRegions collapses every identifier listed in all four listing regions
// into a single record tagged ALL. The first record of such a group survives;
// the others are dropped. Input order is otherwise preserved. A crawl that
// skipped a region therefore never produces ALL.
func MergeRegions(records []*title.Record) []*title.Record {
	want := title.ListingRegions()

	seen := make(map[titleid.ID]map[title.Region]struct{})
	for _, rec := range records {
		set, ok := seen[rec.ID()]
		if !ok {
			set = make(map[title.Region]struct{})
			seen[rec.ID()] = set
		}
		set[rec.Region] = struct{}{}
	}
	covers := func(set map[title.Region]struct{}) bool {
		for _, r := range want {
			if _, ok := set[r]; !ok {
				return false
			}
		}
		return true
	}

	merged := make([]*title.Record, 0, len(records))
	kept := make(map[titleid.ID]struct{})
	for _, rec := range records {
		if !covers(seen[rec.ID()]) {
			merged = append(merged, rec)
			continue
		}
		if _, done := kept[rec.ID()]; done {
			continue
		}
		kept[rec.ID()] = struct{}{}
		rec.Region = title.ALL
		merged = append(merged, rec)
	}
	return merged
}
