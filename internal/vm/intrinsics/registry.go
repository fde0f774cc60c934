// Package intrinsics provides a registry of best-effort native-method stubs
// for the well-known java.*/android.* runtime classes a Dalvik interpreter
// has no bytecode for. Each stub file self-registers via init(), the same
// separation the pack's native-emulator stub registry uses for libc/pthread/
// JNI hooks, retargeted from symbol-address hooks to method-FQDN lookup.
package intrinsics

import (
	"strings"
	"sync"

	"dexlens/internal/vm"
)

// StubFunc emulates one native method's effect on its arguments (receiver
// first for instance methods) and returns its result. ok is false when the
// stub declines to handle this particular call (e.g. an overload it doesn't
// model), leaving the VM to fall back to Value::Unknown.
type StubFunc func(v *vm.VM, args []vm.Value) (vm.Value, bool)

// StubDef names one registered stub for diagnostics, mirroring the pack's
// StubDef{Name, Category, Hook} shape.
type StubDef struct {
	FQDN     string
	Category string
	Fn       StubFunc
}

// Registry maps a method FQDN to its stub. Safe for concurrent registration
// (via init()) and concurrent lookup (one Registry commonly shared read-only
// across a batch of cloned VMs).
type Registry struct {
	mu    sync.RWMutex
	stubs map[string]*StubDef
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stubs: make(map[string]*StubDef)}
}

// DefaultRegistry is the global registry populated by this package's own
// init() functions; callers wanting the full built-in stub set assign it to
// a VM's Intrinsics field directly.
var DefaultRegistry = NewRegistry()

// Register adds one stub definition.
func (r *Registry) Register(def StubDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stubs[def.FQDN] = &def
}

// RegisterFunc is a convenience wrapper for the common case of one FQDN, one
// function, one category.
func (r *Registry) RegisterFunc(fqdn, category string, fn StubFunc) {
	r.Register(StubDef{FQDN: fqdn, Category: category, Fn: fn})
}

// Call implements vm.IntrinsicLookup: looks up fqdn and, if a stub is
// registered, runs it.
func (r *Registry) Call(v *vm.VM, fqdn string, args []vm.Value) (vm.Value, bool) {
	r.mu.RLock()
	def, ok := r.stubs[fqdn]
	r.mu.RUnlock()
	if !ok {
		return vm.VUnknown(), false
	}
	return def.Fn(v, args)
}

// classOfFQDN extracts the declaring class descriptor from a method FQDN
// ("Lpkg/Name;->method(...)Ret" -> "Lpkg/Name;").
func classOfFQDN(fqdn string) string {
	if i := strings.Index(fqdn, "->"); i >= 0 {
		return fqdn[:i]
	}
	return fqdn
}

// stringOf extracts the Go string a Value represents, whether it's an
// unboxed KindString (the common case — strings never need heap boxing to
// flow through the interpreter) or a heap-interned string object.
func stringOf(v *vm.VM, val vm.Value) (string, bool) {
	switch val.Kind {
	case vm.KindString:
		return val.Str, true
	case vm.KindReference:
		if obj := v.Heap.Get(val.Ref); obj != nil && obj.IsString {
			return obj.Str, true
		}
	}
	return "", false
}

// intOf widens any integral argument to int64, used by stubs that accept
// int/long/char/short/byte interchangeably the way autoboxing does.
func intOf(val vm.Value) (int64, bool) {
	return val.AsInt64()
}
