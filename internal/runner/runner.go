package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"

	"titledb/internal/catalog"
	"titledb/internal/config"
	"titledb/internal/credential"
	"titledb/internal/crawl"
	"titledb/internal/logging"
	"titledb/internal/notifications"
	"titledb/internal/preflight"
	"titledb/internal/progress"
	"titledb/internal/retry"
	"titledb/internal/runlock"
	"titledb/internal/services"
	"titledb/internal/services/ccs"
	"titledb/internal/services/ninja"
	"titledb/internal/services/samurai"
	"titledb/internal/services/tagaya"
	"titledb/internal/sizecache"
	"titledb/internal/title"
	"titledb/internal/titleid"
)

// Prompter asks the operator. Confirm returns the reply to a yes/no question;
// Acknowledge shows a message that needs no reply.
type Prompter interface {
	Confirm(question string) bool
	Acknowledge(message string)
}

// Deps carries the collaborators of a run. Every field is optional.
type Deps struct {
	// Prompter answers interactive questions. Nil resumes from the stored
	// cursor and treats "ask" backup policies as "always".
	Prompter Prompter
	Progress progress.Reporter
	Clock    clock.Clock
	Logger   *slog.Logger
	// Notifier receives run completion and failure events.
	Notifier notifications.Service
	// RunID tags log lines; a random id is used when empty.
	RunID string
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID      string
	Options    Options
	Partitions []PartitionSummary
	// Added counts records whose key was new to the catalog.
	Added   int
	Retries int64
	// Cursor is the stored Wii U update position after the run; zero when
	// the Wii U updates were not crawled.
	Cursor        int
	CursorWritten bool
	Duration      time.Duration
}

// PartitionSummary is the state of one partition after a run.
type PartitionSummary struct {
	Partition titleid.Partition
	Records   int
	Added     int
	// Status is written, unchanged, skipped, or empty when untouched.
	Status string
}

// Partition status values.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusSkipped   = "skipped"
)

// ErrNothingSelected is returned when opts selects no pipeline.
var ErrNothingSelected = errors.New("no pipeline selected")

const credentialHelp = "Ensure that both %s and %s exist.\n" +
	"The passphrase file is a text file whose first line is the password of the .p12 bundle."

// Run executes one update run.
func Run(ctx context.Context, cfg *config.Config, opts Options, deps Deps) (Summary, error) {
	if cfg == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "runner", "run", "config is nil", nil)
	}
	if opts.Empty() {
		return Summary{Options: opts}, ErrNothingSelected
	}
	r := newRun(cfg, opts, deps)
	ctx = services.WithRunID(ctx, r.summary.RunID)
	r.logger = logging.WithContext(ctx, r.logger)

	r.logger.Info("update run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("selection", opts.Describe()),
		logging.String("data_dir", cfg.Paths.DataDir),
	)
	err := r.execute(ctx)
	r.summary.Duration = r.clock.Now().Sub(r.started)
	if err != nil {
		logging.ErrorWithContext(r.logger, "update run failed", "run_failed",
			logging.Error(err),
			logging.Duration("duration", r.summary.Duration),
			logging.String(logging.FieldErrorHint, "no partition or cursor was written by this run"),
		)
		if !errors.Is(err, context.Canceled) {
			r.notify(ctx, notifications.EventRunFailed, notifications.Payload{"error": err})
		}
		return r.summary, err
	}
	r.logger.Info("update run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.Int("added", r.summary.Added),
		logging.Int64("retries", r.summary.Retries),
		logging.Int("cursor", r.summary.Cursor),
		logging.Duration("duration", r.summary.Duration),
	)
	r.notify(ctx, notifications.EventRunCompleted, notifications.Payload{
		"selection": opts.Describe(),
		"added":     r.summary.Added,
		"duration":  r.summary.Duration,
		"cursor":    r.summary.Cursor,
	})
	return r.summary, nil
}

// notify publishes outside ctx so a failing run can still be reported.
func (r *run) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := r.notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		logging.WarnWithContext(r.logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the run outcome was not announced"),
		)
	}
}

type run struct {
	cfg      *config.Config
	opts     Options
	prompter Prompter
	progress progress.Reporter
	clock    clock.Clock
	logger   *slog.Logger
	notifier notifications.Service
	started  time.Time

	catalog *catalog.Catalog
	added   map[titleid.Partition]int
	summary Summary
}

func newRun(cfg *config.Config, opts Options, deps Deps) *run {
	r := &run{
		cfg:      cfg,
		opts:     opts,
		prompter: deps.Prompter,
		progress: deps.Progress,
		clock:    deps.Clock,
		logger:   logging.NewComponentLogger(deps.Logger, "runner"),
		notifier: deps.Notifier,
		added:    map[titleid.Partition]int{},
	}
	if r.progress == nil {
		r.progress = progress.Nop{}
	}
	if r.clock == nil {
		r.clock = clock.New()
	}
	if r.notifier == nil {
		r.notifier = notifications.NewService(nil)
	}
	r.started = r.clock.Now()
	r.summary = Summary{RunID: deps.RunID, Options: opts}
	if r.summary.RunID == "" {
		r.summary.RunID = uuid.NewString()
	}
	return r
}

func (r *run) execute(ctx context.Context) error {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "runner", "prepare", "create directories", err)
	}
	if err := r.preflight(); err != nil {
		return err
	}

	lock, err := runlock.Acquire(r.cfg.LockPath(), r.logger)
	if err != nil {
		return err
	}
	defer lock.Release()

	r.catalog, err = catalog.Load(r.cfg.Paths.DataDir, r.logger)
	if err != nil {
		return err
	}

	cursor, err := r.startCursor()
	if err != nil {
		return err
	}

	cert, err := credential.Load(r.cfg.Credentials.CertPath, r.cfg.Credentials.PassPath)
	if err != nil {
		return err
	}
	plain := services.NewHTTPClient(r.cfg.HTTPTimeout(), credential.ServerTLSConfig(r.cfg.Endpoints.VerifyTLS))
	authenticated := services.NewHTTPClient(r.cfg.HTTPTimeout(), credential.TLSConfig(cert, r.cfg.Endpoints.VerifyTLS))
	defer plain.CloseIdleConnections()
	defer authenticated.CloseIdleConnections()

	policy := retry.New(r.cfg.Retry.MaxAttempts, r.cfg.RetryDelay(), retry.WithLogger(r.logger))
	defer func() { r.summary.Retries = policy.Stats().Retries }()

	orchestrator, closeCache, err := r.orchestrator(ctx, plain, authenticated, policy)
	if err != nil {
		return err
	}
	defer closeCache()

	nextCursor, err := r.crawl(ctx, orchestrator, cursor)
	if err != nil {
		return err
	}

	persisted, err := r.persist()
	if err != nil {
		return err
	}
	return r.storeCursor(nextCursor, persisted)
}

func (r *run) preflight() error {
	results := preflight.Local(r.cfg)
	err := preflight.Err(results)
	if err == nil {
		return nil
	}
	credentialMissing := false
	for _, failed := range preflight.Failed(results) {
		logging.ErrorWithContext(r.logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldErrorHint, "run `titledb check` for the full report"),
		)
		if failed.Name == preflight.NameCertificate || failed.Name == preflight.NamePassphrase {
			credentialMissing = true
		}
	}
	if r.prompter != nil && credentialMissing {
		r.prompter.Acknowledge(fmt.Sprintf(credentialHelp, r.cfg.Credentials.CertPath, r.cfg.Credentials.PassPath))
	}
	return err
}

// startCursor returns the position the Wii U update crawl resumes from.
func (r *run) startCursor() (int, error) {
	if !r.opts.Updates.WiiU {
		return 0, nil
	}
	cursor, stored, err := catalog.ReadCursor(r.cfg.CursorPath(), r.logger)
	if err != nil {
		return 0, err
	}
	if stored && r.prompter != nil {
		question := fmt.Sprintf("A previous Wii U update list version was found. Skip all older lists? (last version: %d)", cursor)
		if !r.prompter.Confirm(question) {
			r.logger.Info("stored cursor discarded; crawling every update list",
				logging.Int("discarded", cursor),
			)
			cursor = catalog.InitialCursor
		}
	}
	return cursor, nil
}

func (r *run) orchestrator(ctx context.Context, plain, authenticated *http.Client, policy *retry.Policy) (*crawl.Orchestrator, func(), error) {
	endpoints := r.cfg.Endpoints
	listing, err := samurai.New(endpoints.Samurai, plain, endpoints.UserAgent)
	if err != nil {
		return nil, nil, err
	}
	enricher, err := ninja.New(endpoints.Ninja, authenticated, endpoints.UserAgent)
	if err != nil {
		return nil, nil, err
	}
	updateLists, err := tagaya.New(endpoints.Tagaya, plain, endpoints.UserAgent)
	if err != nil {
		return nil, nil, err
	}
	versionLists, err := tagaya.NewCTR(endpoints.TagayaCTR, plain, endpoints.UserAgent)
	if err != nil {
		return nil, nil, err
	}
	descriptors, err := ccs.New(endpoints.CCS, plain, endpoints.UserAgent)
	if err != nil {
		return nil, nil, err
	}

	regions := make([]title.Region, 0, len(r.cfg.Listing.Regions))
	for _, name := range r.cfg.Listing.Regions {
		regions = append(regions, title.ParseRegion(name))
	}
	cfg := crawl.Config{
		Listing:      listing,
		Enricher:     enricher,
		UpdateLists:  updateLists,
		VersionLists: versionLists,
		Descriptors:  descriptors,
		Policy:       policy,
		Progress:     r.progress,
		Clock:        r.clock,
		Logger:       r.logger,
		Regions:      regions,
		PageSize:     r.cfg.Listing.PageSize,
	}

	closeCache := func() {}
	if r.cfg.SizeCache.Enabled {
		cache, err := sizecache.Open(ctx, r.cfg.SizeCache.Path, r.logger)
		if err != nil {
			logging.WarnWithContext(r.logger, "size cache unavailable", "size_cache_unavailable",
				logging.String("path", r.cfg.SizeCache.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "every size is fetched from the network"),
			)
		} else {
			cfg.SizeCache = cache
			closeCache = func() {
				if err := cache.Close(); err != nil {
					r.logger.Warn("failed to close size cache", logging.Error(err))
				}
			}
		}
	}

	orchestrator, err := crawl.New(cfg)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	return orchestrator, closeCache, nil
}

// crawl runs the selected pipelines and returns the next Wii U cursor.
func (r *run) crawl(ctx context.Context, o *crawl.Orchestrator, cursor int) (int, error) {
	shops := map[Family]samurai.Shop{WiiU: samurai.ShopWiiU, ThreeDS: samurai.Shop3DS}
	for _, f := range Families() {
		if !r.opts.Titles.Has(f) {
			continue
		}
		records, err := o.FetchTitles(ctx, shops[f])
		if err != nil {
			return 0, fmt.Errorf("%s titles: %w", f, err)
		}
		r.add(records)
	}

	next := 0
	if r.opts.Updates.WiiU {
		result, err := o.FetchUpdates(ctx, cursor)
		if err != nil {
			return 0, fmt.Errorf("%s updates: %w", WiiU, err)
		}
		r.add(result.Records)
		next = result.Cursor
	}
	if r.opts.Updates.ThreeDS {
		records, err := o.FetchUpdates3DS(ctx)
		if err != nil {
			return 0, fmt.Errorf("%s updates: %w", ThreeDS, err)
		}
		r.add(records)
	}

	bases := map[Family]titleid.Partition{WiiU: titleid.Games, ThreeDS: titleid.Games3DS}
	for _, f := range Families() {
		if !r.opts.DLCs.Has(f) {
			continue
		}
		records, err := o.ProbeDLCs(ctx, r.catalog.Records(bases[f]))
		if err != nil {
			return 0, fmt.Errorf("%s DLCs: %w", f, err)
		}
		r.add(records)
	}
	return next, nil
}

func (r *run) add(records []*title.Record) {
	for _, rec := range records {
		p := rec.Partition()
		before := r.catalog.Len(p)
		if r.catalog.Add(rec) && r.catalog.Len(p) > before {
			r.added[p]++
			r.summary.Added++
		}
	}
}

func (r *run) persist() (catalog.PersistResult, error) {
	opts := catalog.PersistOptions{
		ConfirmBackup:    r.decision(r.cfg.Catalog.Backup, "Do you want to back up %s before it is replaced?"),
		ConfirmOverwrite: r.decision(r.cfg.Catalog.OverwriteBackup, "A backup already exists at %s. Overwrite it?"),
	}
	result, err := r.catalog.Persist(opts)
	if err != nil {
		return result, err
	}

	status := map[titleid.Partition]string{}
	for _, p := range result.Written {
		status[p] = StatusWritten
	}
	for _, p := range result.Unchanged {
		status[p] = StatusUnchanged
	}
	for _, p := range result.Skipped {
		status[p] = StatusSkipped
	}
	for _, p := range r.catalog.Partitions() {
		r.summary.Partitions = append(r.summary.Partitions, PartitionSummary{
			Partition: p,
			Records:   r.catalog.Len(p),
			Added:     r.added[p],
			Status:    status[p],
		})
	}
	return result, nil
}

func (r *run) decision(policy, question string) catalog.Decision {
	switch policy {
	case config.PolicyNever:
		return catalog.Never
	case config.PolicyAsk:
		if r.prompter != nil {
			return func(path string) bool {
				return r.prompter.Confirm(fmt.Sprintf(question, path))
			}
		}
	}
	return catalog.Always
}

// storeCursor writes next unless the Wii U updates were not crawled or their
// partition was not saved.
func (r *run) storeCursor(next int, persisted catalog.PersistResult) error {
	if !r.opts.Updates.WiiU {
		return nil
	}
	if slices.Contains(persisted.Skipped, titleid.Updates) {
		logging.WarnWithContext(r.logger, "update cursor not advanced", "cursor_kept",
			logging.Int("cursor", next),
			logging.String(logging.FieldImpact, "the same update lists are crawled again next run"),
		)
		return nil
	}
	if err := catalog.WriteCursor(r.cfg.CursorPath(), next); err != nil {
		return err
	}
	r.summary.Cursor = next
	r.summary.CursorWritten = true
	r.logger.Info("update cursor stored",
		logging.String(logging.FieldEventType, "cursor_stored"),
		logging.Int("cursor", next),
	)
	return nil
}
