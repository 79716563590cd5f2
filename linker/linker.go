package linker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-hostcall/engine"
	"github.com/wippyai/wasm-hostcall/errors"
)

// Options configures linker behavior.
type Options struct {
	SemverMatching bool
}

// DefaultOptions returns default linker configuration.
func DefaultOptions() Options {
	return Options{
		SemverMatching: true,
	}
}

// Linker resolves a module's imports by name and instantiates it.
// Thread-safe.
type Linker struct {
	store   *engine.Store
	root    *Namespace
	options Options
	mu      sync.RWMutex
}

// New creates a linker whose definitions belong to store.
func New(store *engine.Store, opts Options) *Linker {
	return &Linker{
		store:   store,
		root:    NewNamespace(),
		options: opts,
	}
}

// NewWithDefaults creates a new Linker with default options.
func NewWithDefaults(store *engine.Store) *Linker {
	return New(store, DefaultOptions())
}

// Store returns the store definitions belong to.
func (l *Linker) Store() *engine.Store {
	return l.store
}

// Options returns the configuration.
func (l *Linker) Options() Options {
	return l.options
}

// Root returns the root namespace.
func (l *Linker) Root() *Namespace {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.root
}

// Namespace returns or creates a namespace by path.
// Namespace accepts paths with versions: "wasi:io/streams@0.2.0"
func (l *Linker) Namespace(path string) *Namespace {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.root
	for _, seg := range parseNamespacePath(path) {
		current = current.Instance(segmentKey(seg.name, seg.version))
	}
	return current
}

// Define binds f to the import module and name.
func (l *Linker) Define(module, name string, f *engine.Func) error {
	if f == nil {
		return errors.Registration(errors.PhaseLink, module, name, errors.Usage("function is nil"))
	}
	if f.Store() != l.store {
		return errors.Registration(errors.PhaseLink, module, name, errors.Usage("function belongs to a different store"))
	}
	l.Namespace(module).Define(name, f)

	Logger().Debug("defined host function",
		zap.String("module", module),
		zap.String("name", name),
		zap.String("type", f.Type().String()))
	return nil
}

// DefineFunc defines f at a full path: "env@1.2.0#log".
func (l *Linker) DefineFunc(path string, f *engine.Func) error {
	module, name, err := splitFuncPath(path)
	if err != nil {
		return err
	}
	return l.Define(module, name, f)
}

// Resolve finds the function bound to an import, using semver matching if
// enabled.
func (l *Linker) Resolve(module, name string) *engine.Func {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.root.Resolve(module+"#"+name, l.options.SemverMatching)
}

// Instantiate resolves every function import of mod in declaration order
// and instantiates it. All unresolved imports are reported together.
func (l *Linker) Instantiate(ctx context.Context, mod *engine.Module) (*engine.Instance, error) {
	imports := mod.Imports()
	funcs := make([]*engine.Func, len(imports))

	var missing []errors.MissingImport
	for i, imp := range imports {
		f := l.Resolve(imp.Module, imp.Name)
		if f == nil {
			missing = append(missing, errors.MissingImport{
				Module: imp.Module,
				Name:   imp.Name,
				Type:   imp.Type.String(),
			})
			continue
		}
		funcs[i] = f
	}

	if len(missing) > 0 {
		Logger().Debug("unresolved imports", zap.Int("count", len(missing)))
		return nil, &errors.MissingImportsError{Imports: missing}
	}

	return engine.NewInstance(ctx, l.store, mod, funcs)
}

// splitFuncPath splits "ns/path#funcname" into namespace and function parts
func splitFuncPath(path string) (nsPath, funcName string, err error) {
	idx := strings.LastIndex(path, "#")
	if idx < 0 || idx == len(path)-1 {
		return "", "", errors.InvalidInput(errors.PhaseLink, fmt.Sprintf("invalid function path %q: missing '#' separator", path))
	}
	return path[:idx], path[idx+1:], nil
}
