package linker

import (
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/wippyai/wasm-hostcall/engine"
)

// Namespace represents a hierarchical namespace node with optional version
type Namespace struct {
	version  *semver.Version
	funcs    map[string]*engine.Func
	children map[string]*Namespace
	parent   *Namespace
	name     string
	mu       sync.RWMutex
}

// NewNamespace creates a root namespace
func NewNamespace() *Namespace {
	return &Namespace{
		funcs:    make(map[string]*engine.Func),
		children: make(map[string]*Namespace),
	}
}

// Name returns the namespace name
func (ns *Namespace) Name() string {
	return ns.name
}

// Version returns the namespace version, or nil if unversioned
func (ns *Namespace) Version() *semver.Version {
	return ns.version
}

// FullPath returns the full namespace path like "wasi:io/streams@0.2.0"
func (ns *Namespace) FullPath() string {
	if ns.parent == nil {
		return ns.name
	}
	self := ns.name
	if ns.version != nil {
		self += "@" + ns.version.String()
	}
	parentPath := ns.parent.FullPath()
	if parentPath == "" {
		return self
	}
	return parentPath + "/" + self
}

// Instance returns or creates a child namespace with the given name.
// Instance accepts name with optional version: "env@1.2.0"
func (ns *Namespace) Instance(name string) *Namespace {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	parsedName, version := parseNameVersion(name)
	key := segmentKey(parsedName, version)

	if child, ok := ns.children[key]; ok {
		return child
	}

	child := &Namespace{
		name:     parsedName,
		version:  version,
		funcs:    make(map[string]*engine.Func),
		children: make(map[string]*Namespace),
		parent:   ns,
	}
	ns.children[key] = child
	return child
}

// Define registers a host function in this namespace.
// Define overwrites any existing function with the same name.
func (ns *Namespace) Define(name string, f *engine.Func) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.funcs[name] = f
}

// Func returns a function by name, or nil if not found
func (ns *Namespace) Func(name string) *engine.Func {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return ns.funcs[name]
}

// Funcs returns all functions defined in this namespace
func (ns *Namespace) Funcs() map[string]*engine.Func {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	result := make(map[string]*engine.Func, len(ns.funcs))
	for k, v := range ns.funcs {
		result[k] = v
	}
	return result
}

// Children returns all child namespaces
func (ns *Namespace) Children() map[string]*Namespace {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	result := make(map[string]*Namespace, len(ns.children))
	for k, v := range ns.children {
		result[k] = v
	}
	return result
}

// Resolve looks up a function by full path: "env@1.2.0#log".
// When the exact version is not defined, the highest defined version that
// satisfies ^version is used if semverMatching is set.
func (ns *Namespace) Resolve(path string, semverMatching bool) *engine.Func {
	idx := strings.LastIndex(path, "#")
	if idx < 0 {
		return nil
	}
	target := ns.resolveNamespace(path[:idx], semverMatching)
	if target == nil {
		return nil
	}
	return target.Func(path[idx+1:])
}

func (ns *Namespace) resolveNamespace(path string, semverMatching bool) *Namespace {
	if path == "" {
		return ns
	}

	current := ns
	for _, seg := range parseNamespacePath(path) {
		next := current.child(seg, semverMatching)
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

func (ns *Namespace) child(seg pathSegment, semverMatching bool) *Namespace {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	if child, ok := ns.children[segmentKey(seg.name, seg.version)]; ok {
		return child
	}
	if seg.version == nil || !semverMatching {
		return nil
	}

	constraint, err := semver.NewConstraint("^" + seg.version.String())
	if err != nil {
		return nil
	}

	var best *Namespace
	for _, child := range ns.children {
		if child.name != seg.name || child.version == nil {
			continue
		}
		if !constraint.Check(child.version) {
			continue
		}
		if best == nil || child.version.GreaterThan(best.version) {
			best = child
		}
	}
	return best
}

// pathSegment represents a parsed namespace path segment
type pathSegment struct {
	version *semver.Version
	name    string
}

func segmentKey(name string, version *semver.Version) string {
	if version == nil {
		return name
	}
	return name + "@" + version.String()
}

// parseNamespacePath parses "wasi:io/streams@0.2.0" into segments
func parseNamespacePath(path string) []pathSegment {
	var segments []pathSegment

	// A package prefix "wasi:io" stays one segment.
	if colonIdx := strings.Index(path, ":"); colonIdx > 0 {
		slashIdx := strings.Index(path[colonIdx:], "/")
		if slashIdx < 0 {
			return append(segments, parseSingleSegment(path))
		}
		segments = append(segments, parseSingleSegment(path[:colonIdx+slashIdx]))
		path = path[colonIdx+slashIdx+1:]
	}

	for _, part := range strings.Split(path, "/") {
		if part != "" {
			segments = append(segments, parseSingleSegment(part))
		}
	}
	return segments
}

func parseSingleSegment(s string) pathSegment {
	name, version := parseNameVersion(s)
	return pathSegment{name: name, version: version}
}

// parseNameVersion splits "name@version" into name and parsed version.
// A suffix that is not a version stays part of the name.
func parseNameVersion(s string) (string, *semver.Version) {
	idx := strings.LastIndex(s, "@")
	if idx < 0 {
		return s, nil
	}
	v, err := semver.NewVersion(s[idx+1:])
	if err != nil {
		return s, nil
	}
	return s[:idx], v
}
