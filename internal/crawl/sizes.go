package crawl

import (
	"context"
	"fmt"

	"titledb/internal/decoder"
	"titledb/internal/logging"
	"titledb/internal/retry"
	"titledb/internal/services"
	"titledb/internal/title"
	"titledb/internal/titleid"
)

// nativePlatforms are the listing platforms of titles sold natively on the
// eShop. Only these are probed for DLC.
var nativePlatforms = map[int]struct{}{
	18: {}, 19: {}, 30: {}, 83: {}, 103: {}, 124: {},
	125: {}, 165: {}, 171: {}, 1001: {}, 1002: {},
}

// Native reports whether a listing platform code is a native eShop platform.
func Native(platform int) bool {
	_, ok := nativePlatforms[platform]
	return ok
}

// BackfillSizes fills in the size of every record whose size is unknown. A
// missing descriptor leaves the size at zero.
func (o *Orchestrator) BackfillSizes(ctx context.Context, records []*title.Record) error {
	var pending []*title.Record
	for _, rec := range records {
		if rec.Size == 0 {
			pending = append(pending, rec)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	o.progress.Title(fmt.Sprintf("Getting title sizes for %d titles", len(pending)))
	o.progress.Reset(len(pending))
	defer o.progress.Done()

	for _, rec := range pending {
		o.progress.Step(rec.ID().String())
		size, found, err := o.contentSize(ctx, rec.ID(), rec.VersionString())
		if err != nil {
			return err
		}
		if found {
			rec.Size = size
		}
	}
	return nil
}

// ProbeDLCs derives a DLC record for every native base game in bases and
// keeps the ones whose descriptor exists.
func (o *Orchestrator) ProbeDLCs(ctx context.Context, bases []*title.Record) ([]*title.Record, error) {
	ctx = services.WithPipeline(ctx, "dlcs")
	var candidates []titleid.ID
	for _, base := range bases {
		p := base.Partition()
		if p != titleid.Games && p != titleid.Games3DS {
			continue
		}
		if !Native(base.Platform) {
			continue
		}
		if id, ok := base.ID().DLCID(); ok {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	o.progress.Title(fmt.Sprintf("Probing DLC for %d titles", len(candidates)))
	o.progress.Reset(len(candidates))
	defer o.progress.Done()

	var found []*title.Record
	for _, id := range candidates {
		o.progress.Step(id.String())
		size, ok, err := o.contentSize(ctx, id, "")
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rec := title.New(id)
		rec.Size = size
		found = append(found, rec)
	}
	o.loggerFor(ctx).Info("DLC probe finished",
		logging.String(logging.FieldEventType, "dlcs_probed"),
		logging.Int("candidates", len(candidates)),
		logging.Int("found", len(found)),
	)
	return found, nil
}

// contentSize resolves the size of (id, version) from the cache or from the
// title's descriptor. found is false when no descriptor exists.
func (o *Orchestrator) contentSize(ctx context.Context, id titleid.ID, version string) (uint64, bool, error) {
	if o.descriptors == nil {
		return 0, false, missingSource("descriptor")
	}
	logger := o.loggerFor(ctx)
	if o.sizes != nil {
		size, ok, err := o.sizes.Lookup(ctx, id, version)
		if err != nil {
			logging.WarnWithContext(logger, "size cache lookup failed", "size_cache_error",
				logging.String(logging.FieldTitleID, id.String()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "size fetched from the network"),
			)
		} else if ok {
			return size, true, nil
		}
	}

	size, result, err := retry.Do(ctx, o.policy, fmt.Sprintf("fetch TMD for %s", id),
		func(ctx context.Context) (uint64, error) {
			blob, err := o.descriptors.TMD(ctx, id, version)
			if err != nil {
				return 0, err
			}
			return decoder.ContentSize(blob, id, version)
		},
		retry.NotFound)
	if err != nil {
		return 0, false, err
	}
	if result.Outcome == retry.Absent {
		return 0, false, nil
	}

	if o.sizes != nil {
		if err := o.sizes.Store(ctx, id, version, size); err != nil {
			logging.WarnWithContext(logger, "size cache store failed", "size_cache_error",
				logging.String(logging.FieldTitleID, id.String()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "size will be fetched again next run"),
			)
		}
	}
	return size, true, nil
}
