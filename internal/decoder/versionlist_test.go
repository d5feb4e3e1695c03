package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titledb/internal/decoder"
	"titledb/internal/services"
	"titledb/internal/testsupport"
	"titledb/internal/titleid"
)

func TestVersionListFiltersGamesAndUnknown(t *testing.T) {
	blob := testsupport.VersionList(t,
		testsupport.VersionEntry{TitleID: "0004000E00055D00", Version: 1040},
		testsupport.VersionEntry{TitleID: "0004000000055D00", Version: 0},
		testsupport.VersionEntry{TitleID: "0004008C00055D00", Version: 16},
		testsupport.VersionEntry{TitleID: "00040010000B0100", Version: 3},
		testsupport.VersionEntry{TitleID: "0004000E00030700", Version: 2},
	)

	entries, err := decoder.VersionList(blob)
	require.NoError(t, err)
	assert.Equal(t, []decoder.Entry{
		{ID: titleid.MustParse("0004000E00055D00"), Version: 1040},
		{ID: titleid.MustParse("0004008C00055D00"), Version: 16},
		{ID: titleid.MustParse("0004000E00030700"), Version: 2},
	}, entries)
}

func TestVersionListEmptyTable(t *testing.T) {
	entries, err := decoder.VersionList(testsupport.VersionList(t))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVersionListRejectsBadHeader(t *testing.T) {
	blob := testsupport.VersionList(t, testsupport.VersionEntry{TitleID: "0004000E00055D00", Version: 1})
	blob[0] = 0x02

	_, err := decoder.VersionList(blob)
	require.ErrorIs(t, err, decoder.ErrMalformedVersionList)
	assert.True(t, services.IsPermanent(err))

	_, err = decoder.VersionList(nil)
	assert.ErrorIs(t, err, decoder.ErrMalformedVersionList)

	_, err = decoder.VersionList([]byte{0x01, 0x00})
	assert.ErrorIs(t, err, decoder.ErrMalformedVersionList)
}

func TestVersionListRejectsPartialEntry(t *testing.T) {
	blob := testsupport.VersionList(t, testsupport.VersionEntry{TitleID: "0004000E00055D00", Version: 1})
	_, err := decoder.VersionList(blob[:len(blob)-3])
	assert.ErrorIs(t, err, decoder.ErrMalformedVersionList)
}

func TestUpdateRecords(t *testing.T) {
	records := decoder.UpdateRecords([]decoder.Entry{
		{ID: titleid.MustParse("0004000E00055D00"), Version: 1040},
		{ID: titleid.MustParse("0004008C00055D00"), Version: 16},
	})
	require.Len(t, records, 2)
	assert.Equal(t, titleid.Updates3DS, records[0].Partition())
	assert.Equal(t, "1040", records[0].VersionString())
	assert.Equal(t, titleid.Dlcs3DS, records[1].Partition())
	assert.Equal(t, "16", records[1].VersionString())
	assert.Zero(t, records[1].Size)
}
