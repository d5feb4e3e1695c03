package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/antonholmquist/jason"

	"titledb/internal/logging"
	"titledb/internal/services"
	"titledb/internal/title"
	"titledb/internal/titleid"
)

// Load reads every partition file under dir. Missing files load as empty
// partitions. Loaded partitions start unmodified.
func Load(dir string, logger *slog.Logger) (*Catalog, error) {
	c := New(dir, logger)
	for _, p := range c.Partitions() {
		if err := c.loadPartition(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) loadPartition(p titleid.Partition) error {
	path := c.Path(p)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("partition file absent",
				logging.String(logging.FieldPartition, p.String()),
				logging.String("path", path),
			)
			return nil
		}
		return services.Wrap(services.ErrConfiguration, "catalog", "load", fmt.Sprintf("read %s", path), err)
	}

	records, skipped, err := decodePartition(data)
	if err != nil {
		return services.Wrap(services.ErrMalformed, "catalog", "load", fmt.Sprintf("parse %s", path), err)
	}
	set := c.sets[p]
	for _, rec := range records {
		rec.AssignPartition(p)
		set.records[rec.Key()] = rec
	}
	set.modified = false

	if skipped > 0 {
		logging.WarnWithContext(c.logger, "skipped catalog entries with invalid title ids", "catalog_entries_skipped",
			logging.String(logging.FieldPartition, p.String()),
			logging.Int("skipped", skipped),
			logging.String(logging.FieldErrorHint, "fix or remove the entries by hand"),
			logging.String(logging.FieldImpact, "skipped entries are dropped the next time the partition is written"),
		)
	}
	c.logger.Info("loaded partition",
		logging.String(logging.FieldPartition, p.String()),
		logging.Int("records", set.Len()),
	)
	return nil
}

func decodePartition(data []byte) ([]*title.Record, int, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, 0, nil
	}
	root, err := jason.NewValueFromBytes(data)
	if err != nil {
		return nil, 0, err
	}
	values, err := root.Array()
	if err != nil {
		return nil, 0, fmt.Errorf("partition is not an array of objects: %w", err)
	}
	objects := make([]*jason.Object, 0, len(values))
	for _, v := range values {
		obj, err := v.Object()
		if err != nil {
			return nil, 0, fmt.Errorf("partition is not an array of objects: %w", err)
		}
		objects = append(objects, obj)
	}

	records := make([]*title.Record, 0, len(objects))
	skipped := 0
	for _, obj := range objects {
		rec, ok := decodeRecord(obj)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func decodeRecord(obj *jason.Object) (*title.Record, bool) {
	id, err := titleid.Parse(stringField(obj, "TitleId"))
	if err != nil {
		return nil, false
	}
	rec := title.New(id)
	rec.EshopID = stringField(obj, "EshopId")
	rec.IconURL = stringField(obj, "IconUrl")
	rec.Name = stringField(obj, "Name")
	rec.ProductCode = stringField(obj, "ProductCode")
	rec.Region = title.ParseRegion(stringField(obj, "Region"))
	if platform, err := strconv.Atoi(stringField(obj, "Platform")); err == nil {
		rec.Platform = platform
	}
	if size, err := strconv.ParseUint(stringField(obj, "Size"), 10, 64); err == nil {
		rec.Size = size
	}
	if preload, err := obj.GetBoolean("PreLoad"); err == nil {
		rec.PreLoad = preload
	}
	rec.SetVersionString(stringField(obj, "Version"))
	return rec, true
}

// stringField reads key as text. Numbers are rendered in decimal; missing,
// null, and other values read as "".
func stringField(obj *jason.Object, key string) string {
	value, err := obj.GetValue(key)
	if err != nil {
		return ""
	}
	if s, err := value.String(); err == nil {
		return s
	}
	if n, err := value.Number(); err == nil {
		return n.String()
	}
	return ""
}
