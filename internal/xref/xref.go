// Package xref builds the reverse cross-reference index over a program
// model.Context: for every entity (class, method, field, string literal)
// named by some instruction, the set of instructions that name it.
package xref

import (
	"sort"
	"strings"
	"sync"

	"dexlens/internal/disasm"
	"dexlens/internal/model"
)

// EntityKind classifies the kind of entity a xref query names.
type EntityKind int

const (
	KindClass EntityKind = iota
	KindMethod
	KindField
	KindString
	KindType
)

// EntityKey identifies one entity: a class/type descriptor, a method or
// field FQDN, or a raw string literal value.
type EntityKey struct {
	Kind EntityKind
	Key  string
}

// Index is the lazily-built, one-shot cross-reference index over a
// Context (spec: "cross-reference index is built lazily on first query
// and cached"). Construction walks every method's disassembled
// instruction stream exactly once and is O(total instructions).
type Index struct {
	ctx  *model.Context
	once sync.Once
	// sites and writes are populated once by build(); read-only afterward,
	// so no lock is needed on lookups once once.Do has run.
	sites map[EntityKey][]model.CiteSite
	// writes marks which field-access sites are iput*/sput* (a write) as
	// opposed to iget*/sget* (a read), keyed by the same siteKey as the
	// site itself. Recorded during the single disassembly pass in build()
	// so FieldAccesses never needs to re-disassemble a method to recover
	// this from the opcode name.
	writes map[siteKey]bool
}

type siteKey struct {
	method *model.Method
	offset int
}

// New wraps ctx in a not-yet-built Index.
func New(ctx *model.Context) *Index {
	return &Index{ctx: ctx}
}

func (ix *Index) ensureBuilt() {
	ix.once.Do(ix.build)
}

func (ix *Index) build() {
	ix.sites = make(map[EntityKey][]model.CiteSite)
	ix.writes = make(map[siteKey]bool)
	for _, cls := range ix.ctx.AllClasses() {
		var df *model.DexFile
		if cls.DexIndex < len(ix.ctx.Dexes) {
			df = ix.ctx.Dexes[cls.DexIndex]
		}
		for _, m := range cls.AllMethods() {
			if m.Code == nil {
				continue
			}
			insts := disasm.Disassemble(m.Code.Insns)
			if df != nil {
				disasm.Resolve(insts, df, ix.ctx)
			}
			for _, in := range insts {
				key, ok := entityKeyOf(in)
				if !ok {
					continue
				}
				site := model.CiteSite{Method: m, Offset: in.Offset}
				ix.sites[key] = append(ix.sites[key], site)
				if key.Kind == KindField {
					ix.writes[siteKey{m, in.Offset}] = strings.HasPrefix(in.Name, "iput") || strings.HasPrefix(in.Name, "sput")
				}
			}
		}
	}
}

func entityKeyOf(in disasm.Instruction) (EntityKey, bool) {
	switch in.Ref {
	case disasm.RefString:
		if in.String != nil {
			return EntityKey{Kind: KindString, Key: *in.String}, true
		}
	case disasm.RefType:
		if in.Type != nil {
			return EntityKey{Kind: KindClass, Key: in.Type.Descriptor}, true
		}
	case disasm.RefField:
		if in.Field != nil {
			return EntityKey{Kind: KindField, Key: in.Field.Class.Descriptor + "->" + in.Field.Name + ":" + in.Field.Type.Descriptor}, true
		}
	case disasm.RefMethod:
		if in.Method != nil {
			return EntityKey{Kind: KindMethod, Key: in.Method.Class.Descriptor + "->" + in.Method.Name + in.Method.Proto.Descriptor()}, true
		}
	}
	return EntityKey{}, false
}

// sortSites orders cite sites by (dex_index, class_descriptor,
// method_signature, instruction_offset) for reproducible output.
func sortSites(sites []model.CiteSite) []model.CiteSite {
	out := append([]model.CiteSite(nil), sites...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Method.Class.DexIndex != b.Method.Class.DexIndex {
			return a.Method.Class.DexIndex < b.Method.Class.DexIndex
		}
		if a.Method.Class.Descriptor() != b.Method.Class.Descriptor() {
			return a.Method.Class.Descriptor() < b.Method.Class.Descriptor()
		}
		if a.Method.Signature() != b.Method.Signature() {
			return a.Method.Signature() < b.Method.Signature()
		}
		return a.Offset < b.Offset
	})
	return out
}

// Class returns every instruction that names classDescriptor (const-class,
// check-cast, instance-of, new-instance, new-array, filled-new-array(/range)).
func (ix *Index) Class(classDescriptor string) []model.CiteSite {
	ix.ensureBuilt()
	return sortSites(ix.sites[EntityKey{Kind: KindClass, Key: classDescriptor}])
}

// Method returns every invoke-* site naming methodFQDN.
func (ix *Index) Method(methodFQDN string) []model.CiteSite {
	ix.ensureBuilt()
	return sortSites(ix.sites[EntityKey{Kind: KindMethod, Key: methodFQDN}])
}

// Field returns every iget/iput/sget/sput site naming fieldFQDN.
func (ix *Index) Field(fieldFQDN string) []model.CiteSite {
	ix.ensureBuilt()
	return sortSites(ix.sites[EntityKey{Kind: KindField, Key: fieldFQDN}])
}

// String returns every const-string/const-string/jumbo site with this
// exact literal value.
func (ix *Index) String(value string) []model.CiteSite {
	ix.ensureBuilt()
	return sortSites(ix.sites[EntityKey{Kind: KindString, Key: value}])
}

// FieldAccesses is Field's sites re-expressed as FieldAccess, resolving
// read vs. write from the opcode name and the concrete *model.Field.
func (ix *Index) FieldAccesses(fieldFQDN string) []model.FieldAccess {
	sites := ix.Field(fieldFQDN)
	if len(sites) == 0 {
		return nil
	}
	var field *model.Field
	for _, cls := range ix.ctx.AllClasses() {
		if f := cls.FindField(fieldName(fieldFQDN), fieldType(fieldFQDN)); f != nil && f.FQDN() == fieldFQDN {
			field = f
			break
		}
	}
	out := make([]model.FieldAccess, 0, len(sites))
	for _, s := range sites {
		out = append(out, model.FieldAccess{
			Site:    s,
			Field:   field,
			IsWrite: ix.writes[siteKey{s.Method, s.Offset}],
		})
	}
	return out
}

func fieldName(fqdn string) string {
	i := strings.Index(fqdn, "->")
	j := strings.LastIndex(fqdn, ":")
	if i < 0 || j < 0 || j < i {
		return ""
	}
	return fqdn[i+2 : j]
}

func fieldType(fqdn string) string {
	j := strings.LastIndex(fqdn, ":")
	if j < 0 {
		return ""
	}
	return fqdn[j+1:]
}
