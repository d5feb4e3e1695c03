package catalog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titledb/internal/catalog"
	"titledb/internal/title"
	"titledb/internal/titleid"
)

func writePartition(t *testing.T, dir string, p titleid.Partition, contents string) string {
	t.Helper()
	path := filepath.Join(dir, p.FileName())
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadMissingFilesAreEmpty(t *testing.T) {
	c, err := catalog.Load(t.TempDir(), nil)
	require.NoError(t, err)
	for _, p := range c.Partitions() {
		assert.Zero(t, c.Len(p))
		assert.False(t, c.Modified(p))
	}
}

func TestLoadIsTolerant(t *testing.T) {
	dir := t.TempDir()
	writePartition(t, dir, titleid.Updates, `[
  {"EshopId": null, "IconUrl": "", "Name": "", "Platform": "124", "ProductCode": null,
   "Region": "", "Size": "391053332", "TitleId": "0005000e10100d00", "PreLoad": false,
   "Version": "42", "DiscOnly": false},
  {"TitleId": "not-a-title", "Version": "1"},
  {"TitleId": "0005000E10200D00", "Size": 77, "Version": 3, "Region": "N/A"}
]`)

	c, err := catalog.Load(dir, nil)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len(titleid.Updates))
	assert.False(t, c.Modified(titleid.Updates))

	recs := c.Records(titleid.Updates)
	assert.Equal(t, "0005000E10100D00", recs[0].ID().String())
	assert.Equal(t, 124, recs[0].Platform)
	assert.Equal(t, uint64(391053332), recs[0].Size)
	assert.Equal(t, "42", recs[0].VersionString())
	assert.Equal(t, "", recs[0].EshopID)
	assert.Equal(t, uint64(77), recs[1].Size)
	assert.Equal(t, "3", recs[1].VersionString())
	assert.Equal(t, title.RegionNone, recs[1].Region)
}

func TestLoadForcesFilePartition(t *testing.T) {
	dir := t.TempDir()
	writePartition(t, dir, titleid.Injections, `[{"TitleId": "0005000010100D00", "Region": "USA"}]`)

	c, err := catalog.Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len(titleid.Injections))
	assert.Zero(t, c.Len(titleid.Games))
}

func TestLoadRejectsNonArray(t *testing.T) {
	dir := t.TempDir()
	writePartition(t, dir, titleid.Games, `{"TitleId": "0005000010100D00"}`)

	_, err := catalog.Load(dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "games.json")
}

func TestPersistWritesSortedIndentedArray(t *testing.T) {
	dir := t.TempDir()
	c := catalog.New(dir, nil)
	second := record(t, "0005000E10200D00", 1)
	first := record(t, "0005000E10100D00", 42)
	first.Name = "TestTitle® Wii U"
	first.IconURL = "http://example/icon.png"
	c.AddAll([]*title.Record{second, first})

	result, err := c.Persist(catalog.PersistOptions{})
	require.NoError(t, err)
	assert.Equal(t, []titleid.Partition{titleid.Updates}, result.Written)
	assert.False(t, c.Modified(titleid.Updates))

	data, err := os.ReadFile(filepath.Join(dir, "updates.json"))
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"EshopId\": \"\",\n"), text)
	assert.Contains(t, text, `"Name": "TestTitle\u00ae Wii U"`)
	assert.Contains(t, text, `"IconUrl": "http:\/\/example\/icon.png"`)
	assert.Less(t, strings.Index(text, "0005000E10100D00"), strings.Index(text, "0005000E10200D00"))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)

	for _, p := range c.Partitions() {
		if p == titleid.Updates {
			continue
		}
		_, err := os.Stat(filepath.Join(dir, p.FileName()))
		assert.True(t, os.IsNotExist(err), "unmodified partition %s was written", p)
	}
}

func TestPersistRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := catalog.New(dir, nil)
	game := record(t, "0005000010100D00", -1)
	game.Name = "Game"
	game.Region = title.ALL
	game.Size = 1 << 33
	c.Add(game)
	_, err := c.Persist(catalog.PersistOptions{})
	require.NoError(t, err)

	reloaded, err := catalog.Load(dir, nil)
	require.NoError(t, err)
	recs := reloaded.Records(titleid.Games)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Equal(game))
	assert.Equal(t, game.Size, recs[0].Size)
	assert.Equal(t, title.ALL, recs[0].Region)
	assert.Equal(t, "-", recs[0].ProductCode)

	first, err := c.Marshal(titleid.Games)
	require.NoError(t, err)
	second, err := reloaded.Marshal(titleid.Games)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestPersistSkipsIdenticalBytes(t *testing.T) {
	dir := t.TempDir()
	c := catalog.New(dir, nil)
	c.Add(record(t, "0005000C10100D00", 0))
	_, err := c.Persist(catalog.PersistOptions{})
	require.NoError(t, err)

	c.Add(record(t, "0005000C10100D00", 0))
	require.True(t, c.Modified(titleid.Dlcs))
	backups := 0
	result, err := c.Persist(catalog.PersistOptions{ConfirmBackup: func(string) bool { backups++; return true }})
	require.NoError(t, err)
	assert.Equal(t, []titleid.Partition{titleid.Dlcs}, result.Unchanged)
	assert.Empty(t, result.Written)
	assert.Zero(t, backups)
	assert.True(t, result.Persisted(titleid.Dlcs))
}

func TestPersistBackupDecisions(t *testing.T) {
	dir := t.TempDir()
	path := writePartition(t, dir, titleid.Updates, "[]")
	backup := path + catalog.BackupSuffix

	c, err := catalog.Load(dir, nil)
	require.NoError(t, err)
	c.Add(record(t, "0005000E10100D00", 16))

	var asked []string
	result, err := c.Persist(catalog.PersistOptions{
		ConfirmBackup:    func(p string) bool { asked = append(asked, p); return true },
		ConfirmOverwrite: catalog.Never,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, asked)
	assert.Equal(t, []titleid.Partition{titleid.Updates}, result.BackedUp)

	saved, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(saved))
}

func TestPersistDeclinedOverwriteSkipsPartition(t *testing.T) {
	dir := t.TempDir()
	path := writePartition(t, dir, titleid.Updates, "[]")
	require.NoError(t, os.WriteFile(path+catalog.BackupSuffix, []byte("old backup"), 0o644))

	c, err := catalog.Load(dir, nil)
	require.NoError(t, err)
	c.Add(record(t, "0005000E10100D00", 16))

	result, err := c.Persist(catalog.PersistOptions{ConfirmBackup: catalog.Always, ConfirmOverwrite: catalog.Never})
	require.NoError(t, err)
	assert.Equal(t, []titleid.Partition{titleid.Updates}, result.Skipped)
	assert.False(t, result.Persisted(titleid.Updates))
	assert.True(t, c.Modified(titleid.Updates))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(current))
	saved, err := os.ReadFile(path + catalog.BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "old backup", string(saved))
}

func TestPersistApprovedOverwriteReplacesBackup(t *testing.T) {
	dir := t.TempDir()
	path := writePartition(t, dir, titleid.Games3DS, "[]")
	require.NoError(t, os.WriteFile(path+catalog.BackupSuffix, []byte("old backup"), 0o644))

	c, err := catalog.Load(dir, nil)
	require.NoError(t, err)
	c.Add(record(t, "0004000000055D00", -1))

	result, err := c.Persist(catalog.PersistOptions{ConfirmBackup: catalog.Always, ConfirmOverwrite: catalog.Always})
	require.NoError(t, err)
	assert.Equal(t, []titleid.Partition{titleid.Games3DS}, result.Written)

	saved, err := os.ReadFile(path + catalog.BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(saved))
}
