package shred

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Shredder drives a run: discovery, per-file strategy selection,
// erasure, and secure unlinking, with progress reporting and
// cooperative cancellation. An instance is reusable across runs but
// supports only one run at a time; each run owns a fresh OperationState
// and Result.
type Shredder struct {
	config   Config
	classify Classifier
	progress func(Progress)
	discover DiscoverOptions

	running   atomic.Bool
	cancelled atomic.Bool

	mu        sync.Mutex
	cancelRun context.CancelFunc
}

// Option configures a Shredder
type Option func(*Shredder)

// WithProgress sets the progress listener. It is invoked from the run's
// single worker at pass and chunk boundaries and must never block.
func WithProgress(fn func(Progress)) Option {
	return func(s *Shredder) {
		s.progress = fn
	}
}

// WithClassifier replaces the default volume classifier
func WithClassifier(c Classifier) Option {
	return func(s *Shredder) {
		s.classify = c
	}
}

// WithDiscoverOptions sets the discovery exclusion filters
func WithDiscoverOptions(opts DiscoverOptions) Option {
	return func(s *Shredder) {
		s.discover = opts
	}
}

// New creates a Shredder with the given configuration. The
// configuration is validated once, before any run can start.
func New(cfg Config, opts ...Option) (*Shredder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Shredder{
		config:   cfg,
		classify: ClassifyPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Cancel requests cooperative cancellation of the current run.
// Idempotent; safe to call from any goroutine. The run observes it at
// the next pass or chunk boundary, so cancellation latency is bounded
// by one chunk's I/O time.
func (s *Shredder) Cancel() {
	s.cancelled.Store(true)

	s.mu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.mu.Unlock()
}

// Run processes the given paths to completion, cancellation, or a
// failure to start. Per-file erasure and unlink errors are recorded in
// the result and never abort the batch; only an invalid input set or a
// discovery failure returns an error with no result. On cancellation
// the partial result is returned with WasCancelled set; files already
// erased stay erased, there is no rollback.
func (s *Shredder) Run(ctx context.Context, paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, NewShredError("run", "", errors.New("no paths given"))
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, NewShredError("run", "", errors.New("a run is already in progress"))
	}
	defer s.running.Store(false)

	s.cancelled.Store(false)
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancelRun = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelRun = nil
		s.mu.Unlock()
	}()

	start := time.Now()
	state := &OperationState{Running: true, Status: "discovering"}
	s.emit(state, 0, "discovering files")

	files, err := Discover(paths, s.discover)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if len(files) == 0 {
		res.Duration = time.Since(start)
		s.emit(state, 1, "nothing to do")
		return res, nil
	}

	total := len(files)
	slog.Debug("processing discovered files", "count", total)

	for i, file := range files {
		if s.stopRequested(runCtx) {
			res.WasCancelled = true
			break
		}

		state.CurrentIndex = i
		state.CurrentFile = file.Path
		base := filepath.Base(file.Path)
		s.emit(state, float64(i)/float64(total), "shredding "+base)

		volume := s.classify(file.Path)
		strategy := StrategyFor(volume)
		slog.Debug("classified file",
			"path", file.Path,
			"fstype", volume.FSType,
			"network", volume.IsNetwork,
			"strategy", strategy,
		)

		err := s.eraseOne(runCtx, file, strategy, i, total, state)
		if errors.Is(err, ErrCancelled) {
			// no outcome for the interrupted file
			res.WasCancelled = true
			break
		}
		if err == nil {
			err = SecureUnlink(file.Path)
		}

		res.Files = append(res.Files, FileResult{
			Path:     file.Path,
			Strategy: strategy,
			Size:     file.Size,
			Err:      err,
		})
		res.FilesProcessed++
		if err == nil {
			res.FilesSucceeded++
			res.BytesShredded += file.Size
		} else {
			res.FilesFailed++
			slog.Error("failed to shred file", "path", file.Path, "error", err)
		}
		if file.Nlink > 1 {
			res.HardLinkedFiles = append(res.HardLinkedFiles, file.Path)
		}
	}

	if res.WasCancelled {
		s.emit(state, state.Fraction, "cancelled")
	} else {
		s.cleanupDirs(paths)
		s.emit(state, 1, "done")
	}

	state.Running = false
	res.Duration = time.Since(start)
	return res, nil
}

// eraseOne dispatches to the eraser matching the strategy. The match is
// exhaustive over the closed strategy set.
func (s *Shredder) eraseOne(ctx context.Context, file DiscoveredFile, strategy Strategy, index, total int, state *OperationState) error {
	opts := EraseOptions{
		Passes:    s.config.Passes,
		ChunkSize: s.config.ChunkSize,
		Verify:    s.config.Verify,
		Progress: func(frac float64) {
			overall := (float64(index) + frac) / float64(total)
			s.emit(state, overall, state.Status)
		},
	}

	switch strategy {
	case StrategyOverwrite:
		return OverwriteEraser{}.Erase(ctx, file, opts)
	case StrategyCrypto:
		return CryptoEraser{}.Erase(ctx, file, opts)
	case StrategyUnlinkOnly:
		return UnlinkOnlyEraser{}.Erase(ctx, file, opts)
	default:
		return fmt.Errorf("unknown strategy: %v", strategy)
	}
}

// cleanupDirs best-effort removes input directories left empty after
// their files were shredded.
func (s *Shredder) cleanupDirs(paths []string) {
	for _, root := range paths {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if info, err := os.Lstat(abs); err == nil && info.IsDir() {
			RemoveEmptyDirs(abs)
		}
	}
}

func (s *Shredder) stopRequested(ctx context.Context) bool {
	return s.cancelled.Load() || ctx.Err() != nil
}

func (s *Shredder) emit(state *OperationState, frac float64, status string) {
	state.Fraction = frac
	state.Status = status
	if s.progress != nil {
		s.progress(Progress{Fraction: frac, Status: status})
	}
}
