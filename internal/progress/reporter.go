package progress

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"titledb/internal/logging"
)

// Reporter receives progress events from a crawl pipeline.
type Reporter interface {
	// Title names the phase that the following steps belong to.
	Title(title string)
	// Reset starts a new phase of total steps.
	Reset(total int)
	// Step records one finished unit of work.
	Step(message string)
	// Done closes the current phase.
	Done()
}

// Nop discards all events.
type Nop struct{}

func (Nop) Title(string) {}
func (Nop) Reset(int)    {}
func (Nop) Step(string)  {}
func (Nop) Done()        {}

// Tracker renders each phase as a go-pretty progress bar.
type Tracker struct {
	mu      sync.Mutex
	writer  progress.Writer
	current *progress.Tracker
	title   string
	running bool
}

// NewTracker renders progress bars to out.
func NewTracker(out io.Writer) *Tracker {
	writer := progress.NewWriter()
	writer.SetOutputWriter(out)
	writer.SetAutoStop(false)
	writer.SetTrackerLength(30)
	writer.SetMessageLength(48)
	writer.SetUpdateFrequency(100 * time.Millisecond)
	writer.SetStyle(progress.StyleDefault)
	writer.Style().Visibility.ETA = true
	writer.Style().Visibility.Percentage = true
	return &Tracker{writer: writer}
}

func (t *Tracker) Title(title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.title = strings.TrimSpace(title)
}

func (t *Tracker) Reset(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil && !t.current.IsDone() {
		t.current.MarkAsDone()
	}
	if !t.running {
		t.running = true
		go t.writer.Render()
	}
	t.current = &progress.Tracker{
		Message: t.title,
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}
	t.writer.AppendTracker(t.current)
}

func (t *Tracker) Step(string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil {
		t.current.Increment(1)
	}
}

func (t *Tracker) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil && !t.current.IsDone() {
		t.current.MarkAsDone()
	}
}

// Stop finishes rendering. The tracker must not be used afterwards.
func (t *Tracker) Stop() {
	t.Done()
	t.mu.Lock()
	running := t.running
	t.running = false
	t.mu.Unlock()
	if !running {
		return
	}
	t.writer.Stop()
	for t.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}

// LogReporter writes a log line whenever a phase starts and each time its
// completion crosses another bucket.
type LogReporter struct {
	mu      sync.Mutex
	logger  *slog.Logger
	sampler *sampler
	title   string
	total   int
	done    int
}

// NewLogReporter reports through logger every bucketPercent percent.
func NewLogReporter(logger *slog.Logger, bucketPercent float64) *LogReporter {
	return &LogReporter{
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: newSampler(bucketPercent),
	}
}

func (r *LogReporter) Title(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.title = strings.TrimSpace(title)
	r.logger.Info(r.title)
}

func (r *LogReporter) Reset(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total, r.done = total, 0
	r.sampler.reset()
}

func (r *LogReporter) Step(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	percent := -1.0
	if r.total > 0 {
		percent = float64(r.done) * 100 / float64(r.total)
	}
	if !r.sampler.shouldLog(percent) {
		return
	}
	r.logger.Info("progress",
		logging.String("phase", r.title),
		logging.Int("done", r.done),
		logging.Int("total", r.total),
		logging.String("item", message),
	)
}

func (r *LogReporter) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Debug("phase finished",
		logging.String("phase", r.title),
		logging.Int("done", r.done),
	)
}

// sampler suppresses repetitive progress lines while emitting whenever the
// percentage crosses a bucket boundary.
type sampler struct {
	bucketSize float64
	lastBucket int
}

func newSampler(bucketSize float64) *sampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &sampler{bucketSize: bucketSize, lastBucket: -1}
}

// shouldLog reports whether percent starts a new bucket. Negative percent
// means unknown and never logs.
func (s *sampler) shouldLog(percent float64) bool {
	if percent < 0 {
		return false
	}
	bucket := int(percent / s.bucketSize)
	if percent >= 100 {
		bucket = int(100 / s.bucketSize)
	}
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}

func (s *sampler) reset() { s.lastBucket = -1 }
