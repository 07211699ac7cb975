package ingest

// ProgressFunc receives the overall completion percentage (0-100).
type ProgressFunc func(percent int)

// Per-file phases: reading ends at 10%, extraction fills 10-90% in equal
// batch steps, finalizing ends the file at 100%.
const (
	readDonePercent    = 10
	extractDonePercent = 90
)

// progressTracker turns per-file phase progress into an overall
// percentage across all files. It only ever reports increasing values.
type progressTracker struct {
	fn        ProgressFunc
	total     int
	completed int
	last      int
}

func newProgressTracker(totalFiles int, fn ProgressFunc) *progressTracker {
	return &progressTracker{fn: fn, total: totalFiles}
}

func (p *progressTracker) file(percent int) {
	if p.total == 0 {
		return
	}
	percent = max(0, min(percent, 100))
	p.emit((p.completed*100 + percent) / p.total)
}

func (p *progressTracker) read() {
	p.file(readDonePercent)
}

// batch reports that done of n extraction requests for the current file
// have finished.
func (p *progressTracker) batch(done, n int) {
	if n <= 0 {
		p.file(extractDonePercent)
		return
	}
	p.file(readDonePercent + (extractDonePercent-readDonePercent)*done/n)
}

func (p *progressTracker) fileDone() {
	p.completed++
	p.file(0)
}

// finish guarantees the final report is 100.
func (p *progressTracker) finish() {
	p.emit(100)
}

func (p *progressTracker) emit(percent int) {
	if p.fn == nil || percent <= p.last {
		return
	}
	p.last = percent
	p.fn(percent)
}
