package grove

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jward/grove/internal/runtime"
	"github.com/jward/grove/internal/store"
)

// Engine owns the dataset snapshot. It loads the dataset once at startup,
// answers queries from the current snapshot and swaps in a new snapshot on
// Reload. Safe for concurrent use.
type Engine struct {
	source        string
	loader        LoaderFunc
	logger        *slog.Logger
	assignTokens  bool
	prepareScript string
	scriptsDir    string
	scriptsFS     fs.FS
	runtime       *runtime.Runtime

	current  atomic.Pointer[snapshot]
	reloadMu sync.Mutex
	reloads  atomic.Int64
}

// snapshot is one immutable loaded dataset.
type snapshot struct {
	root  *store.Node
	stats Stats
}

// Stats describes the installed snapshot.
type Stats struct {
	Source       string    `json:"source"`
	NodeCount    int       `json:"node_count"`
	ProjectCount int       `json:"project_count"`
	MaxDepth     int       `json:"max_depth"`
	ContentHash  string    `json:"content_hash"`
	LoadedAt     time.Time `json:"loaded_at"`
	Reloads      int64     `json:"reloads"`
}

// LoaderFunc produces a fresh, caller-owned tree. The Engine calls it on
// every load; the default loader reads the source file.
type LoaderFunc func(ctx context.Context) (*Node, error)

// Option configures an Engine.
type Option func(*Engine)

// WithAssignTokens renumbers the tree in pre-order on every load, for
// datasets exported without tokens.
func WithAssignTokens(assign bool) Option {
	return func(e *Engine) {
		e.assignTokens = assign
	}
}

// WithPrepareScript runs the named Risor script (a path relative to the
// scripts directory or filesystem, e.g. "prepare/default.risor") over every
// freshly loaded tree before it is validated.
func WithPrepareScript(path string) Option {
	return func(e *Engine) {
		e.prepareScript = path
	}
}

// WithScriptsFS loads prepare scripts from fsys instead of from disk. This
// enables embedding scripts via go:embed.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// WithScriptsDir loads prepare scripts from dir. Ignored when WithScriptsFS
// is set.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// WithLoader replaces the file loader. source is then only a label.
func WithLoader(load LoaderFunc) Option {
	return func(e *Engine) {
		e.loader = load
	}
}

// WithLogger sets the Engine's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine for the dataset at source and loads the first
// snapshot. The format follows the file extension: .db, .sqlite and
// .sqlite3 are SQLite datasets, anything else is tree JSON.
func New(source string, opts ...Option) (*Engine, error) {
	e := &Engine{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loader == nil {
		e.loader = func(context.Context) (*Node, error) {
			return store.LoadFile(e.source)
		}
	}
	e.logger = e.logger.With("dataset", source)

	if e.prepareScript != "" {
		var rtOpts []runtime.RuntimeOption
		if e.scriptsFS != nil {
			rtOpts = append(rtOpts, runtime.WithRuntimeFS(e.scriptsFS))
		}
		rtOpts = append(rtOpts, runtime.WithLogger(e.logger))
		e.runtime = runtime.NewRuntime(e.scriptsDir, rtOpts...)
	}

	snap, err := e.build(context.Background())
	if err != nil {
		return nil, err
	}
	e.current.Store(snap)
	e.logger.Info("dataset loaded",
		"nodes", snap.stats.NodeCount,
		"projects", snap.stats.ProjectCount,
		"hash", snap.stats.ContentHash)
	return e, nil
}

// Reload rebuilds the snapshot from the source and installs it. Concurrent
// reloads are serialized; queries keep running against the old snapshot
// until the swap. On failure the old snapshot stays installed and the
// returned error wraps ErrDatasetLoad.
func (e *Engine) Reload(ctx context.Context) error {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	start := time.Now()
	snap, err := e.build(ctx)
	if err != nil {
		e.logger.Error("dataset reload failed", "error", err)
		return err
	}
	snap.stats.Reloads = e.reloads.Add(1)
	e.current.Store(snap)
	e.logger.Info("dataset reloaded",
		"nodes", snap.stats.NodeCount,
		"hash", snap.stats.ContentHash,
		"duration", time.Since(start))
	return nil
}

// Query returns a QueryBuilder bound to the current snapshot.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{root: e.current.Load().root}
}

// Stats describes the current snapshot.
func (e *Engine) Stats() Stats {
	return e.current.Load().stats
}

// Source returns the dataset path or label the Engine was created with.
func (e *Engine) Source() string {
	return e.source
}

// build runs the load pipeline: read, assign tokens, prepare, validate.
func (e *Engine) build(ctx context.Context) (*snapshot, error) {
	root, err := e.loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDatasetLoad, e.source, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDatasetLoad, e.source, store.ErrInvalidDataset)
	}

	if e.assignTokens {
		n := store.AssignTokens(root)
		e.logger.Debug("tokens assigned", "count", n)
	}

	if e.runtime != nil {
		prepared, res, err := e.runtime.Prepare(ctx, e.prepareScript, root)
		if err != nil {
			return nil, fmt.Errorf("%w: prepare: %w", ErrDatasetLoad, err)
		}
		e.logger.Debug("prepare script applied",
			"script", e.prepareScript,
			"excluded", res.Excluded,
			"renamed", res.Renamed)
		root = prepared
	}

	if err := store.Validate(root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetLoad, err)
	}

	return &snapshot{root: root, stats: computeStats(e.source, root)}, nil
}

func computeStats(source string, root *store.Node) Stats {
	st := Stats{
		Source:      source,
		ContentHash: store.ComputeTreeHash(root),
		LoadedAt:    time.Now(),
	}
	root.Walk(func(n *store.Node, depth int) bool {
		st.NodeCount++
		if n.Project {
			st.ProjectCount++
		}
		if depth > st.MaxDepth {
			st.MaxDepth = depth
		}
		return true
	})
	return st
}
