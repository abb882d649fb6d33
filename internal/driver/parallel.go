package driver

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"nixscan/internal/parser"
	"nixscan/internal/project"
	"nixscan/internal/source"
	"nixscan/internal/syntax"
)

// ParseOptions controls ParseFiles.
type ParseOptions struct {
	// Jobs bounds the worker pool; 0 means GOMAXPROCS.
	Jobs int
	// Sequential parses on the calling goroutine.
	Sequential bool
	// MaxDiagnostics caps parse diagnostics per file; 0 means no cap.
	MaxDiagnostics int
	// MaxDepth bounds parser recursion; 0 means the parser default.
	MaxDepth int
	// BaseDir is the project root. Files are named relative to it.
	BaseDir string

	// Cache is shared between runs; a fresh one is made when nil.
	Cache    *Cache
	Disk     *DiskCache
	Logger   *slog.Logger
	Progress ProgressSink
}

// Failure records a file that could not be read.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string { return f.Path + ": " + f.Err.Error() }

func (f Failure) Unwrap() error { return f.Err }

// Summary counts the outcome of a batch.
type Summary struct {
	Parsed     int
	Failed     int
	WithErrors int
	Cached     int
}

// ParseResult is a finished batch. Files are sorted by path. FileSet is the
// cache's and may hold files of earlier batches.
type ParseResult struct {
	FileSet  *source.FileSet
	Files    []*syntax.SourceFile
	Failures []Failure
	Summary  Summary
}

type parseOutcome struct {
	file    *syntax.SourceFile
	failure *Failure
	cached  bool
}

// ParseFiles reads and parses paths. Read failures are logged and the file
// dropped; files with parse errors are kept. The only error returned is
// context cancellation.
func ParseFiles(ctx context.Context, paths []string, opts ParseOptions) (*ParseResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Cache == nil {
		opts.Cache = NewCache()
	}
	fileSet := opts.Cache.FileSet()

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	outcomes := make([]parseOutcome, len(paths))
	w := &parseWorker{opts: opts, fileSet: fileSet, logger: logger}

	if opts.Sequential || len(paths) <= 1 {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = w.parse(path)
		}
	} else {
		jobs := opts.Jobs
		if jobs <= 0 {
			jobs = runtime.GOMAXPROCS(0)
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(paths)))
		for i, path := range paths {
			g.Go(func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				outcomes[i] = w.parse(path)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	res := &ParseResult{FileSet: fileSet}
	for _, o := range outcomes {
		switch {
		case o.failure != nil:
			res.Failures = append(res.Failures, *o.failure)
			res.Summary.Failed++
		case o.file != nil:
			res.Files = append(res.Files, o.file)
			res.Summary.Parsed++
			if o.cached {
				res.Summary.Cached++
			}
			if o.file.HasErrors() {
				res.Summary.WithErrors++
			}
		}
	}
	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].Path < res.Files[j].Path })
	logger.Info("parse.done",
		"parsed", res.Summary.Parsed,
		"failed", res.Summary.Failed,
		"with_errors", res.Summary.WithErrors,
		"cached", res.Summary.Cached)
	return res, nil
}

type parseWorker struct {
	opts    ParseOptions
	fileSet *source.FileSet
	logger  *slog.Logger
}

func (w *parseWorker) name(path string) string {
	if w.opts.BaseDir == "" {
		return source.NormalizePath(path)
	}
	rel, err := source.RelativePath(path, w.opts.BaseDir)
	if err != nil {
		return source.NormalizePath(path)
	}
	return rel
}

func (w *parseWorker) parse(path string) parseOutcome {
	start := time.Now()
	name := w.name(path)
	emit(w.opts.Progress, Event{File: name, Stage: StageParse, Status: StatusWorking})

	id, err := w.fileSet.Load(path)
	if err != nil {
		w.logger.Warn("parse.read.err", "path", name, "err", err)
		emit(w.opts.Progress, Event{File: name, Stage: StageParse, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return parseOutcome{failure: &Failure{Path: name, Err: err}}
	}
	file := w.fileSet.Get(id)
	digest := project.HashContent(file.Content)

	if sf, ok := w.opts.Cache.Lookup(name, digest); ok {
		emit(w.opts.Progress, Event{File: name, Stage: StageParse, Status: StatusCached, Elapsed: time.Since(start)})
		return parseOutcome{file: sf, cached: true}
	}
	if sf, ok := w.fromDisk(file, name, digest); ok {
		w.opts.Cache.Put(sf, digest)
		emit(w.opts.Progress, Event{File: name, Stage: StageParse, Status: StatusCached, Elapsed: time.Since(start)})
		return parseOutcome{file: sf, cached: true}
	}

	sf := parser.ParseFile(w.fileSet, id, parser.Options{
		MaxErrors: maxErrors(w.opts.MaxDiagnostics),
		MaxDepth:  w.opts.MaxDepth,
	})
	sf.Path = name
	w.opts.Cache.Put(sf, digest)
	if w.opts.Disk != nil {
		if err := w.opts.Disk.Put(digest, toDiskPayload(sf)); err != nil {
			w.logger.Warn("cache.write.err", "path", name, "err", err)
		}
	}
	w.logger.Debug("parse.file", "path", name, "diagnostics", len(sf.Diagnostics), "dur", time.Since(start))
	emit(w.opts.Progress, Event{File: name, Stage: StageParse, Status: StatusDone, Elapsed: time.Since(start)})
	return parseOutcome{file: sf}
}

func (w *parseWorker) fromDisk(file *source.File, name string, digest project.Digest) (*syntax.SourceFile, bool) {
	if w.opts.Disk == nil {
		return nil, false
	}
	var payload DiskPayload
	ok, err := w.opts.Disk.Get(digest, &payload)
	if err != nil {
		w.logger.Warn("cache.read.err", "path", name, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	sf, err := fromDiskPayload(file, name, &payload)
	if err != nil {
		if !errors.Is(err, syntax.ErrBadSnapshot) {
			w.logger.Warn("cache.decode.err", "path", name, "err", err)
		}
		return nil, false
	}
	return sf, true
}

func maxErrors(n int) uint {
	v, err := safecast.Conv[uint](n)
	if err != nil {
		return 0
	}
	return v
}
