package runtime

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-hostcall/engine"
	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/linker"
	"github.com/wippyai/wasm-hostcall/wasm"
)

// Host is the interface for struct-based host modules.
// All exported methods (except Namespace) are registered as host functions.
type Host interface {
	// Namespace returns the import module name (e.g., "env" or "env@1.0.0").
	Namespace() string
}

// ExplicitRegistrar allows hosts to provide exact import names
// when automatic PascalCase-to-kebab-case conversion doesn't apply.
type ExplicitRegistrar interface {
	Register() map[string]any
}

// HostRegistry collects host functions until they are bound to a linker.
type HostRegistry struct {
	funcs map[string]map[string]*HostFunc
	mu    sync.RWMutex
}

// HostFunc is a registered host function.
type HostFunc struct {
	Handler      any
	Options      []engine.FuncOption
	Type         wasm.FuncType
	ExposeCaller bool
	bound        *linker.Linker
}

func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		funcs: make(map[string]map[string]*HostFunc),
	}
}

// RegisterHost registers every exported method of h, or the functions
// returned by Register when h is an ExplicitRegistrar.
func (r *HostRegistry) RegisterHost(h Host) error {
	ns := h.Namespace()
	if ns == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}

	if er, ok := h.(ExplicitRegistrar); ok {
		for name, handler := range er.Register() {
			if err := r.RegisterFunc(ns, name, handler); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(h)
	rt := rv.Type()

	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() || method.Name == "Namespace" {
			continue
		}
		if err := r.RegisterFunc(ns, toKebabCase(method.Name), rv.Method(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFunc registers fn under namespace#name with a signature inferred
// from its Go type.
func (r *HostRegistry) RegisterFunc(namespace, name string, fn any) error {
	if fn == nil {
		return errors.InvalidInput(errors.PhaseHost, "handler cannot be nil")
	}
	ft, exposeCaller, err := InferFuncType(reflect.TypeOf(fn))
	if err != nil {
		return errors.Registration(errors.PhaseHost, namespace, name, err)
	}
	return r.register(namespace, name, &HostFunc{
		Handler:      fn,
		Type:         ft,
		ExposeCaller: exposeCaller,
	})
}

// RegisterCallable registers impl with an explicit signature. impl is
// anything engine.NewFunc accepts.
func (r *HostRegistry) RegisterCallable(namespace, name string, ft wasm.FuncType, impl any, opts ...engine.FuncOption) error {
	return r.register(namespace, name, &HostFunc{
		Handler: impl,
		Type:    ft.Clone(),
		Options: opts,
	})
}

func (r *HostRegistry) register(namespace, name string, hf *HostFunc) error {
	if namespace == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "function name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[namespace] == nil {
		r.funcs[namespace] = make(map[string]*HostFunc)
	}
	r.funcs[namespace][name] = hf
	return nil
}

// Lookup returns a registered function.
func (r *HostRegistry) Lookup(namespace, name string) (*HostFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hf, ok := r.funcs[namespace][name]
	return hf, ok
}

// Names returns "namespace#name" for every registered function, sorted.
func (r *HostRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for ns, funcs := range r.funcs {
		for name := range funcs {
			names = append(names, ns+"#"+name)
		}
	}
	sort.Strings(names)
	return names
}

// Bind creates an engine.Func for every function not yet bound to l and
// defines it there.
func (r *HostRegistry) Bind(l *linker.Linker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for namespace, funcs := range r.funcs {
		for name, hf := range funcs {
			if hf.bound == l {
				continue
			}
			opts := append([]engine.FuncOption{engine.WithName(namespace + "#" + name)}, hf.Options...)
			if hf.ExposeCaller {
				opts = append(opts, engine.WithCaller())
			}
			f, err := engine.NewFunc(l.Store(), hf.Type, hf.Handler, opts...)
			if err != nil {
				return errors.Registration(errors.PhaseHost, namespace, name, err)
			}
			if err := l.Define(namespace, name, f); err != nil {
				return err
			}
			hf.bound = l
			Logger().Debug("bound host function",
				zap.String("namespace", namespace),
				zap.String("name", name),
				zap.String("type", hf.Type.String()))
		}
	}
	return nil
}

// toKebabCase converts PascalCase to kebab-case.
// Handles acronyms and numeric suffixes: GetHTTPResponse -> get-http-response,
// PrintI32 -> print-i32, Sha256 -> sha-256
func toKebabCase(s string) string {
	if len(s) == 0 {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsUpper(r) {
			acronymEnd := i + 1
			for acronymEnd < len(runes) && unicode.IsUpper(runes[acronymEnd]) {
				acronymEnd++
			}

			if acronymEnd > i+1 {
				// Last uppercase before lowercase starts next word, not part of acronym
				if acronymEnd < len(runes) && unicode.IsLower(runes[acronymEnd]) {
					acronymEnd--
				}
			}

			if i > 0 {
				result.WriteByte('-')
			}

			for j := i; j < acronymEnd; j++ {
				result.WriteRune(unicode.ToLower(runes[j]))
			}
			i = acronymEnd - 1
		} else if unicode.IsDigit(r) && i > 0 && unicode.IsLower(runes[i-1]) {
			result.WriteByte('-')
			result.WriteRune(r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
