package operations

import (
	"sync"

	"github.com/hashicorp/go-multierror"

	"GalaxyClientv2/internal/models"
)

type State string

const (
	StateResolvingManifest    State = "resolving_manifest"
	StateResolvingSecureLinks State = "resolving_secure_links"
	StateDownloading          State = "downloading"
	StateCompleted            State = "completed"
	StateFailed               State = "failed"
)

// InstallTask is one download request: the inputs the surrounding tooling
// supplies.
type InstallTask struct {
	ProductID   string
	Platform    string
	Branch      string
	InstallPath string
	Language    string
	Bitness     int
	WorkerCount int
	// Substring filter, non-matching files are skipped before any fetch.
	FileFilter string
}

type FailedFile struct {
	Path        string
	ContentHash string
	Err         error
}

// Result is the run outcome. Fatal failures land in Err with State Failed;
// per-file failures are absorbed into FailedFiles and leave State Completed.
type Result struct {
	State            State
	Build            *models.Build
	InstallDirectory string

	TotalFiles      int
	WrittenFiles    int
	SkippedFiles    int
	FailedFiles     []FailedFile
	TotalBytes      int64
	DownloadedBytes int64

	Err error
}

// Outcome distinguishes the three endings callers branch on: a repair flow
// retries just the failed subset, a fatal failure means rerun everything.
func (r *Result) Outcome() string {
	switch {
	case r.State == StateFailed:
		return "failed"
	case len(r.FailedFiles) > 0:
		return "completed_with_failures"
	default:
		return "completed"
	}
}

// FailureSummary aggregates per-file failures, nil when everything landed.
func (r *Result) FailureSummary() error {
	var agg *multierror.Error
	for _, f := range r.FailedFiles {
		agg = multierror.Append(agg, f.Err)
	}
	return agg.ErrorOrNil()
}

func (r *Result) Summary() models.TaskSummary {
	return models.TaskSummary{
		TotalFiles:      r.TotalFiles,
		WrittenFiles:    r.WrittenFiles,
		SkippedFiles:    r.SkippedFiles,
		FailedFiles:     len(r.FailedFiles),
		TotalBytes:      r.TotalBytes,
		DownloadedBytes: r.DownloadedBytes,
	}
}

type ProgressSnapshot struct {
	State           State
	TotalFiles      int
	CompletedFiles  int
	SkippedFiles    int
	FailedFiles     int
	TotalBytes      int64
	DownloadedBytes int64
}

// Fraction is the compressed-byte completion ratio.
func (s ProgressSnapshot) Fraction() float64 {
	if s.TotalBytes <= 0 {
		return 0
	}
	f := float64(s.DownloadedBytes) / float64(s.TotalBytes)
	if f > 1 {
		f = 1
	}
	return f
}

type Progress struct {
	mu sync.RWMutex

	state           State
	totalFiles      int
	completedFiles  int
	skippedFiles    int
	failedFiles     int
	totalBytes      int64
	downloadedBytes int64
}

func (p *Progress) SetState(state State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func (p *Progress) SetTotals(files int, skipped int, bytes int64) {
	p.mu.Lock()
	p.totalFiles = files
	p.skippedFiles = skipped
	p.totalBytes = bytes
	p.mu.Unlock()
}

func (p *Progress) IncrementCompletedFiles() {
	p.mu.Lock()
	p.completedFiles++
	p.mu.Unlock()
}

func (p *Progress) IncrementFailedFiles() {
	p.mu.Lock()
	p.failedFiles++
	p.mu.Unlock()
}

func (p *Progress) AddDownloadedBytes(n int64) {
	p.mu.Lock()
	p.downloadedBytes += n
	p.mu.Unlock()
}

func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return ProgressSnapshot{
		State:           p.state,
		TotalFiles:      p.totalFiles,
		CompletedFiles:  p.completedFiles,
		SkippedFiles:    p.skippedFiles,
		FailedFiles:     p.failedFiles,
		TotalBytes:      p.totalBytes,
		DownloadedBytes: p.downloadedBytes,
	}
}
