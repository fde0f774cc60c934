package vm

import "strings"

// ClassInitState tracks a class's <clinit> progress (spec §4.5: "First
// touch of a class's static field or static method triggers <clinit>
// before the touching instruction completes").
type ClassInitState int

const (
	NotStarted ClassInitState = iota
	InProgress
	Done
)

// staticArea is the lazily-materialised table of static field values,
// keyed by field FQDN, plus the per-class init-state machine that prevents
// re-entrant <clinit> runs.
type staticArea struct {
	values map[string]Value          // field FQDN -> current value
	state  map[string]ClassInitState // class descriptor -> init state
}

func newStaticArea() *staticArea {
	return &staticArea{
		values: make(map[string]Value),
		state:  make(map[string]ClassInitState),
	}
}

func (s *staticArea) stateOf(classDescriptor string) ClassInitState {
	return s.state[classDescriptor]
}

func (s *staticArea) get(fieldFQDN string) (Value, bool) {
	v, ok := s.values[fieldFQDN]
	return v, ok
}

func (s *staticArea) set(fieldFQDN string, v Value) {
	s.values[fieldFQDN] = v
}

// GetStaticField runs the owning class's <clinit> if it hasn't run yet,
// then returns the field's current value (spec §6 "get_static_field(fqdn)
// -> value or 'not initialised'"). ok is false if fqdn doesn't name a
// field the static area knows about, which the caller reports as "not
// initialised".
func (vm *VM) GetStaticField(fqdn string) (Value, bool, error) {
	classDescriptor := classDescriptorOf(fqdn)
	if classDescriptor == "" {
		return Value{}, false, nil
	}
	if err := vm.ensureClassInit(classDescriptor); err != nil {
		return Value{}, false, err
	}
	v, ok := vm.Statics.get(fqdn)
	return v, ok, nil
}

// classDescriptorOf extracts the "Lpkg/Name;" prefix from a field FQDN of
// the form "Lpkg/Name;->field:Type".
func classDescriptorOf(fqdn string) string {
	i := strings.Index(fqdn, "->")
	if i < 0 {
		return ""
	}
	return fqdn[:i]
}
