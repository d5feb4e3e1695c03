package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"titledb/internal/fileutil"
	"titledb/internal/logging"
	"titledb/internal/services"
	"titledb/internal/titleid"
)

// BackupSuffix is appended to a partition path to name its backup.
const BackupSuffix = ".bak"

// Decision answers a yes/no question about path.
type Decision func(path string) bool

// Always approves every decision.
func Always(string) bool { return true }

// Never declines every decision.
func Never(string) bool { return false }

// PersistOptions carries the backup decisions consulted before a partition
// file is replaced.
type PersistOptions struct {
	// ConfirmBackup decides whether an existing partition file is copied to
	// its backup before being replaced. Nil means never.
	ConfirmBackup Decision
	// ConfirmOverwrite decides whether an existing backup may be replaced.
	// Declining leaves both the backup and the partition file untouched.
	ConfirmOverwrite Decision
}

// PersistResult reports what happened to each modified partition.
type PersistResult struct {
	Written   []titleid.Partition
	Unchanged []titleid.Partition
	Skipped   []titleid.Partition
	BackedUp  []titleid.Partition
}

// Persisted reports whether p is on disk after the call, either because it
// was written or because its file already held the same bytes.
func (r PersistResult) Persisted(p titleid.Partition) bool {
	for _, list := range [][]titleid.Partition{r.Written, r.Unchanged} {
		for _, q := range list {
			if q == p {
				return true
			}
		}
	}
	return false
}

// Marshal renders the records of p as the partition file contents.
func (c *Catalog) Marshal(p titleid.Partition) ([]byte, error) {
	var raw bytes.Buffer
	raw.WriteByte('[')
	for i, rec := range c.Records(p) {
		if i > 0 {
			raw.WriteByte(',')
		}
		encoded, err := rec.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", rec.ID(), err)
		}
		raw.Write(encoded)
	}
	raw.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, raw.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indent %s: %w", p, err)
	}
	return out.Bytes(), nil
}

// Persist writes every modified partition. Partitions that were not modified
// are never touched.
func (c *Catalog) Persist(opts PersistOptions) (PersistResult, error) {
	if opts.ConfirmBackup == nil {
		opts.ConfirmBackup = Never
	}
	if opts.ConfirmOverwrite == nil {
		opts.ConfirmOverwrite = Never
	}

	var result PersistResult
	for _, p := range c.Partitions() {
		set := c.sets[p]
		if !set.modified {
			continue
		}
		outcome, err := c.persistPartition(p, opts)
		if err != nil {
			return result, err
		}
		switch outcome {
		case outcomeWritten, outcomeWrittenWithBackup:
			result.Written = append(result.Written, p)
			if outcome == outcomeWrittenWithBackup {
				result.BackedUp = append(result.BackedUp, p)
			}
			set.modified = false
		case outcomeUnchanged:
			result.Unchanged = append(result.Unchanged, p)
			set.modified = false
		case outcomeSkipped:
			result.Skipped = append(result.Skipped, p)
		}
	}
	return result, nil
}

type persistOutcome int

const (
	outcomeWritten persistOutcome = iota
	outcomeWrittenWithBackup
	outcomeUnchanged
	outcomeSkipped
)

func (c *Catalog) persistPartition(p titleid.Partition, opts PersistOptions) (persistOutcome, error) {
	path := c.Path(p)
	data, err := c.Marshal(p)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "catalog", "persist", p.String(), err)
	}

	current, exists, err := fileutil.FileFingerprint(path)
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "catalog", "persist", fmt.Sprintf("read %s", path), err)
	}
	if exists && current == fileutil.Fingerprint(data) {
		c.logger.Debug("partition unchanged on disk",
			logging.String(logging.FieldPartition, p.String()),
			logging.String("path", path),
		)
		return outcomeUnchanged, nil
	}

	outcome := outcomeWritten
	if exists && opts.ConfirmBackup(path) {
		backup := path + BackupSuffix
		if fileutil.Exists(backup) && !opts.ConfirmOverwrite(backup) {
			logging.WarnWithContext(c.logger, "partition not written; existing backup kept", "partition_write_declined",
				logging.String(logging.FieldPartition, p.String()),
				logging.String("backup", backup),
				logging.String(logging.FieldErrorHint, "move the backup aside or allow overwriting it"),
				logging.String(logging.FieldImpact, "changes to this partition from this run are discarded"),
			)
			return outcomeSkipped, nil
		}
		if err := fileutil.CopyFileVerified(path, backup); err != nil {
			return 0, services.Wrap(services.ErrConfiguration, "catalog", "backup", backup, err)
		}
		outcome = outcomeWrittenWithBackup
	}

	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "catalog", "persist", path, err)
	}
	c.logger.Info("wrote partition",
		logging.String(logging.FieldPartition, p.String()),
		logging.Int("records", c.Len(p)),
		logging.String("path", path),
		logging.Bool("backup", outcome == outcomeWrittenWithBackup),
	)
	return outcome, nil
}
