package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"

	"titledb/internal/crawl"
	"titledb/internal/retry"
	"titledb/internal/services"
	"titledb/internal/services/ninja"
	"titledb/internal/services/samurai"
	"titledb/internal/services/tagaya"
	"titledb/internal/title"
	"titledb/internal/titleid"
)

type fakeListing struct {
	items map[title.Region][]samurai.Item
	calls int
}

func (f *fakeListing) Count(_ context.Context, region title.Region, _ samurai.Shop) (int, error) {
	f.calls++
	return len(f.items[region]), nil
}

func (f *fakeListing) Titles(_ context.Context, region title.Region, _ samurai.Shop, limit, offset int) (samurai.Page, error) {
	f.calls++
	all := f.items[region]
	page := samurai.Page{Total: len(all)}
	if offset >= len(all) {
		return page, nil
	}
	end := min(offset+limit, len(all))
	page.Items = append(page.Items, all[offset:end]...)
	return page, nil
}

type fakeEnricher struct {
	infos map[string]ninja.ECInfo
	// failures makes the first n calls for an eshop id fail transiently.
	failures map[string]int
	calls    int
}

func (f *fakeEnricher) ECInfo(_ context.Context, _ title.Region, eshopID string) (ninja.ECInfo, error) {
	f.calls++
	if f.failures[eshopID] > 0 {
		f.failures[eshopID]--
		return ninja.ECInfo{}, services.Wrap(services.ErrTransient, "ninja", "ec_info", "connection reset", nil)
	}
	info, ok := f.infos[eshopID]
	if !ok {
		return ninja.ECInfo{}, &services.StatusError{StatusCode: 404, URL: eshopID}
	}
	return info, nil
}

type fakeUpdateLists struct {
	latest int
	lists  map[int][]tagaya.Update
	errs   map[int]error
	asked  []int
}

func (f *fakeUpdateLists) LatestVersion(context.Context) (int, error) { return f.latest, nil }

func (f *fakeUpdateLists) VersionList(_ context.Context, n int) ([]tagaya.Update, error) {
	f.asked = append(f.asked, n)
	if err := f.errs[n]; err != nil {
		return nil, err
	}
	return f.lists[n], nil
}

type fakeVersionList struct{ blob []byte }

func (f fakeVersionList) VersionList(context.Context) ([]byte, error) { return f.blob, nil }

type fakeDescriptors struct {
	blobs map[string][]byte
	errs  map[string]error
	calls []string
}

func descriptorKey(id titleid.ID, version string) string {
	return id.String() + "/" + version
}

func (f *fakeDescriptors) TMD(_ context.Context, id titleid.ID, version string) ([]byte, error) {
	key := descriptorKey(id, version)
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	blob, ok := f.blobs[key]
	if !ok {
		return nil, &services.StatusError{StatusCode: 404, URL: key}
	}
	return blob, nil
}

type fakeCache struct {
	mu      sync.Mutex
	sizes   map[string]uint64
	stored  []string
	lookErr error
}

func newFakeCache() *fakeCache { return &fakeCache{sizes: map[string]uint64{}} }

func (c *fakeCache) Lookup(_ context.Context, id titleid.ID, version string) (uint64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lookErr != nil {
		return 0, false, c.lookErr
	}
	size, ok := c.sizes[descriptorKey(id, version)]
	return size, ok, nil
}

func (c *fakeCache) Store(_ context.Context, id titleid.ID, version string, size uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := descriptorKey(id, version)
	c.sizes[key] = size
	c.stored = append(c.stored, key)
	return nil
}

type recordingReporter struct {
	titles []string
	totals []int
	steps  int
	done   int
}

func (r *recordingReporter) Title(s string) { r.titles = append(r.titles, s) }
func (r *recordingReporter) Reset(n int)    { r.totals = append(r.totals, n) }
func (r *recordingReporter) Step(string)    { r.steps++ }
func (r *recordingReporter) Done()          { r.done++ }

// mockClockAt returns a mock clock reading at.
func mockClockAt(at time.Time) *clock.Mock {
	mock := clock.NewMock()
	mock.Add(at.Sub(mock.Now()))
	return mock
}

func newOrchestrator(t *testing.T, cfg crawl.Config) *crawl.Orchestrator {
	t.Helper()
	if cfg.Policy == nil {
		cfg.Policy = retry.New(3, 0)
	}
	if cfg.Clock == nil {
		cfg.Clock = mockClockAt(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC))
	}
	o, err := crawl.New(cfg)
	if err != nil {
		t.Fatalf("crawl.New: %v", err)
	}
	return o
}

var errBoom = errors.New("boom")

func itemFor(eshopID string, platform int, date string) samurai.Item {
	return samurai.Item{
		EshopID:     eshopID,
		ProductCode: "A" + eshopID,
		Name:        fmt.Sprintf("Title %s", eshopID),
		IconURL:     "https://img.example/" + eshopID + ".jpg",
		Platform:    platform,
		ReleaseDate: date,
	}
}
