package crawl

import (
	"context"
	"fmt"
	"strconv"

	"titledb/internal/catalog"
	"titledb/internal/decoder"
	"titledb/internal/logging"
	"titledb/internal/retry"
	"titledb/internal/services"
	"titledb/internal/services/tagaya"
	"titledb/internal/title"
	"titledb/internal/titleid"
)

// UpdateResult carries the records of an incremental update crawl and the
// cursor the next run should resume from.
type UpdateResult struct {
	Records []*title.Record
	// Cursor is the latest list version seen. Persist it only after the
	// whole run succeeded.
	Cursor int
	// Lists is the number of update lists fetched; Absent counts the ones
	// the service refused or no longer serves.
	Lists  int
	Absent int
}

// FetchUpdates downloads every Wii U update list newer than cursor.
func (o *Orchestrator) FetchUpdates(ctx context.Context, cursor int) (UpdateResult, error) {
	if o.updateLists == nil {
		return UpdateResult{}, missingSource("update list")
	}
	ctx = services.WithPipeline(ctx, "updates")
	logger := o.loggerFor(ctx)
	if cursor < catalog.InitialCursor {
		cursor = catalog.InitialCursor
	}

	latest, _, err := retry.Do(ctx, o.policy, "fetch latest update list version", o.updateLists.LatestVersion, retry.Never)
	if err != nil {
		return UpdateResult{}, err
	}
	result := UpdateResult{Cursor: cursor}
	if latest > cursor {
		result.Cursor = latest
	}
	logger.Info("update lists sized",
		logging.Int("cursor", cursor),
		logging.Int("latest", latest),
	)

	pending := latest - cursor
	if pending > 0 {
		o.progress.Title(fmt.Sprintf("Downloading %d update lists", pending))
		o.progress.Reset(pending)
	}

	seen := make(map[title.Key]struct{})
	for n := cursor + 1; n <= latest; n++ {
		o.progress.Step(fmt.Sprintf("update list %d", n))
		rows, outcome, err := retry.Do(ctx, o.policy, fmt.Sprintf("fetch update list %d", n),
			func(ctx context.Context) ([]tagaya.Update, error) { return o.updateLists.VersionList(ctx, n) },
			retry.Any(retry.Forbidden, retry.NotFound))
		if err != nil {
			o.progress.Done()
			return UpdateResult{}, err
		}
		if outcome.Outcome == retry.Absent {
			result.Absent++
			logger.Debug("update list unavailable", logging.Int("list", n))
			continue
		}
		result.Lists++
		for _, row := range rows {
			rec, ok := updateRecord(row)
			if !ok {
				logger.Debug("skipping unrecognized update row",
					logging.String(logging.FieldTitleID, row.TitleID),
					logging.String("version", row.Version),
				)
				continue
			}
			if _, dup := seen[rec.Key()]; dup {
				continue
			}
			seen[rec.Key()] = struct{}{}
			result.Records = append(result.Records, rec)
		}
	}
	if pending > 0 {
		o.progress.Done()
	}

	if err := o.BackfillSizes(ctx, result.Records); err != nil {
		return UpdateResult{}, err
	}
	logger.Info("update lists crawled",
		logging.String(logging.FieldEventType, "updates_crawled"),
		logging.Int("records", len(result.Records)),
		logging.Int("lists", result.Lists),
		logging.Int("absent", result.Absent),
		logging.Int("next_cursor", result.Cursor),
	)
	return result, nil
}

func updateRecord(row tagaya.Update) (*title.Record, bool) {
	id, err := titleid.Parse(row.TitleID)
	if err != nil {
		return nil, false
	}
	version, err := strconv.Atoi(row.Version)
	if err != nil || version < 0 {
		return nil, false
	}
	rec := title.New(id)
	rec.AssignPartition(titleid.Updates)
	rec.SetVersion(version)
	return rec, true
}

// FetchUpdates3DS downloads and decodes the binary 3DS version list.
func (o *Orchestrator) FetchUpdates3DS(ctx context.Context) ([]*title.Record, error) {
	if o.versionLists == nil {
		return nil, missingSource("3DS version list")
	}
	ctx = services.WithPipeline(ctx, "updates3ds")

	blob, _, err := retry.Do(ctx, o.policy, "fetch 3DS version list", o.versionLists.VersionList, retry.Never)
	if err != nil {
		return nil, err
	}
	entries, err := decoder.VersionList(blob)
	if err != nil {
		return nil, err
	}
	records := decoder.UpdateRecords(entries)
	if err := o.BackfillSizes(ctx, records); err != nil {
		return nil, err
	}
	o.loggerFor(ctx).Info("3DS version list crawled",
		logging.String(logging.FieldEventType, "updates_crawled"),
		logging.Int("records", len(records)),
	)
	return records, nil
}
