// Package query implements the language-neutral operation surface a host
// (CLI, embedder) drives a loaded Context through: find, cross_references,
// emulate, analyse_branches, get_static_field. It owns no state beyond a
// Context and the indexes/VM built over it — every operation is a pure
// read (or, for emulate, a bounded interpreter run) with no persistence.
package query

import (
	"fmt"
	"regexp"

	"dexlens/internal/flow"
	"dexlens/internal/model"
	"dexlens/internal/vm"
	"dexlens/internal/vm/intrinsics"
	"dexlens/internal/xref"
)

// Kind selects which entity family Find searches over.
type Kind string

const (
	KindClass  Kind = "class"
	KindMethod Kind = "method"
	KindField  Kind = "field"
	KindString Kind = "string"
)

// NotFoundError reports an entity that Find/CrossReferences/GetStaticField
// couldn't resolve (spec §7 "NotFound(kind, query)").
type NotFoundError struct {
	Kind  string
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("query: no %s matching %q", e.Kind, e.Query)
}

// Session binds a Context to the indexes and VM built over it. One Session
// is safe for sequential use; concurrent callers should use separate
// Sessions (each with its own VM) rather than sharing one.
type Session struct {
	Ctx   *model.Context
	Index *xref.Index
	VM    *vm.VM
}

// New builds a Session over ctx with a fresh VM wired to the default
// native-method stub registry (internal/vm/intrinsics), so Emulate can
// resolve well-known library calls (String, StringBuilder, collections,
// ...) without Dalvik code for them.
func New(ctx *model.Context) *Session {
	v := vm.New(ctx, vm.DefaultOptions())
	v.Intrinsics = intrinsics.DefaultRegistry
	return &Session{
		Ctx:   ctx,
		Index: xref.New(ctx),
		VM:    v,
	}
}

// Find returns every entity of kind whose stable identifier matches
// pattern (spec §6 "find(regex, kind) -> list of Evidence").
func (s *Session) Find(pattern string, kind Kind) ([]model.Evidence, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("query: bad pattern %q: %w", pattern, err)
	}

	var out []model.Evidence
	switch kind {
	case KindClass:
		for _, cls := range s.Ctx.AllClasses() {
			if re.MatchString(cls.Descriptor()) {
				out = append(out, model.NewClassEvidence(cls))
			}
		}
	case KindMethod:
		for _, cls := range s.Ctx.AllClasses() {
			for _, m := range cls.AllMethods() {
				if re.MatchString(m.FQDN()) {
					out = append(out, model.NewMethodEvidence(m))
				}
			}
		}
	case KindField:
		for _, cls := range s.Ctx.AllClasses() {
			for _, f := range cls.AllFields() {
				if re.MatchString(f.FQDN()) {
					out = append(out, model.NewFieldEvidence(f))
				}
			}
		}
	case KindString:
		seen := make(map[string]bool)
		for _, df := range s.Ctx.Dexes {
			for _, str := range df.Strings {
				if seen[str] || !re.MatchString(str) {
					continue
				}
				seen[str] = true
				out = append(out, model.NewStringEvidence(str))
			}
		}
	default:
		return nil, fmt.Errorf("query: unknown kind %q", kind)
	}
	return out, nil
}

// CrossReferences returns every instruction site that names entity (spec
// §6 "cross_references(entity) -> list of Evidence"), wrapped back up as
// Instruction Evidence so the result composes with another Find/
// CrossReferences call.
func (s *Session) CrossReferences(entity model.Evidence) ([]model.Evidence, error) {
	var sites []model.CiteSite
	switch entity.Kind {
	case model.EvidenceClass:
		cls, err := entity.AsClass()
		if err != nil {
			return nil, err
		}
		sites = s.Index.Class(cls.Descriptor())
	case model.EvidenceMethod:
		m, err := entity.AsMethod()
		if err != nil {
			return nil, err
		}
		sites = s.Index.Method(m.FQDN())
	case model.EvidenceField:
		f, err := entity.AsField()
		if err != nil {
			return nil, err
		}
		sites = s.Index.Field(f.FQDN())
	case model.EvidenceString:
		str, err := entity.AsString()
		if err != nil {
			return nil, err
		}
		sites = s.Index.String(str)
	default:
		return nil, &model.ErrTypeMismatch{Want: model.EvidenceMethod, Have: entity.Kind}
	}

	out := make([]model.Evidence, len(sites))
	for i, site := range sites {
		out[i] = model.NewInstructionEvidence(site)
	}
	return out, nil
}

// Emulate runs method to completion in the Session's VM (spec §6
// "emulate(method, args) -> value or error").
func (s *Session) Emulate(method *model.Method, args []vm.Value) (vm.Value, error) {
	if method == nil {
		return vm.Value{}, &NotFoundError{Kind: "method", Query: "<nil>"}
	}
	return s.VM.Invoke(method, args)
}

// AnalyseBranches runs the flow analyser over method (spec §6
// "analyse_branches(method, conservative) -> list of Branching").
func (s *Session) AnalyseBranches(method *model.Method, conservative bool) ([]flow.Branching, error) {
	if method == nil {
		return nil, &NotFoundError{Kind: "method", Query: "<nil>"}
	}
	return flow.AnalyseBranches(method, s.Ctx, conservative, flow.DefaultOptions())
}

// GetStaticField resolves fqdn's owning class's <clinit> if needed and
// returns its current value (spec §6 "get_static_field(fqdn) -> value or
// 'not initialised'"). A false ok means "not initialised" in spec terms:
// either fqdn doesn't name a known static field, or its class has no
// recorded static state at all.
func (s *Session) GetStaticField(fqdn string) (vm.Value, bool, error) {
	val, ok, err := s.VM.GetStaticField(fqdn)
	if err != nil {
		return vm.Value{}, false, err
	}
	if !ok {
		return vm.Value{}, false, nil
	}
	return val, true, nil
}

// FindMethodByFQDN is a convenience lookup used by CLI subcommands that
// take a method FQDN directly rather than a Find result (e.g. `emulate`,
// `analyse-branches`).
func (s *Session) FindMethodByFQDN(fqdn string) (*model.Method, error) {
	for _, cls := range s.Ctx.AllClasses() {
		for _, m := range cls.AllMethods() {
			if m.FQDN() == fqdn {
				return m, nil
			}
		}
	}
	return nil, &NotFoundError{Kind: "method", Query: fqdn}
}
