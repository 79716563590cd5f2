package engine

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-hostcall/errors"
)

// Engine compiles modules and creates the wazero runtimes instances run in.
//
// Every Instance gets its own wazero runtime so that its imports can be
// bound positionally without clashing with other instances' host modules.
// All runtimes share one compilation cache, so a module is compiled once.
type Engine struct {
	cache      wazero.CompilationCache
	base       wazero.Runtime
	runtimeCfg wazero.RuntimeConfig
	cfg        Config
	mu         sync.Mutex
	closed     bool
}

// NewEngine creates an engine with the given configuration.
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cache := wazero.NewCompilationCache()
	runtimeCfg := wazero.NewRuntimeConfig().
		WithCompilationCache(cache).
		WithCloseOnContextDone(cfg.CloseOnContextDone)
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	if cfg.EnableThreads {
		runtimeCfg = runtimeCfg.WithCoreFeatures(api.CoreFeaturesV2 | experimental.CoreFeaturesThreads)
	}

	Logger().Debug("engine created",
		zap.Uint32("memory_limit_pages", cfg.MemoryLimitPages),
		zap.Bool("close_on_context_done", cfg.CloseOnContextDone),
		zap.Bool("threads", cfg.EnableThreads))

	return &Engine{
		cfg:        cfg,
		cache:      cache,
		runtimeCfg: runtimeCfg,
		base:       wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
	}, nil
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) newRuntime(ctx context.Context) (wazero.Runtime, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.Closed("engine")
	}
	return wazero.NewRuntimeWithConfig(ctx, e.runtimeCfg), nil
}

// Close releases the compilation cache. Instances must be closed first.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	return multierr.Combine(
		e.base.Close(ctx),
		e.cache.Close(ctx),
	)
}
