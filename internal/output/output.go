// Package output renders query results (Evidence, Branching, Value) to
// JSON, either to an io.Writer for interactive use or to a file under an
// output directory for scripted/batch use — the same two-mode convention
// the teacher's CLI commands use for their own JSON artifacts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dexlens/internal/flow"
	"dexlens/internal/model"
	"dexlens/internal/vm"
)

// EvidenceJSON is the wire shape for one model.Evidence: Kind tags which
// of the optional fields is populated, mirroring model.EvidenceKind's
// String() names so a reader can dispatch without guessing.
type EvidenceJSON struct {
	Kind string `json:"kind"`

	Class  string `json:"class,omitempty"`
	Method string `json:"method,omitempty"`
	Field  string `json:"field,omitempty"`
	String string `json:"string,omitempty"`

	FieldAccess  *FieldAccessJSON  `json:"field_access,omitempty"`
	NativeSymbol *NativeSymbolJSON `json:"native_symbol,omitempty"`
	Instruction  *InstructionJSON  `json:"instruction,omitempty"`
}

type FieldAccessJSON struct {
	Method  string `json:"method"`
	Offset  int    `json:"offset"`
	Field   string `json:"field"`
	IsWrite bool   `json:"is_write"`
}

type NativeSymbolJSON struct {
	Library string `json:"library"`
	Name    string `json:"name"`
	Address uint64 `json:"address"`
	Size    uint64 `json:"size"`
}

type InstructionJSON struct {
	Method string `json:"method"`
	Offset int    `json:"offset"`
}

// EvidenceToJSON converts one Evidence into its wire shape, downcasting on
// the Evidence's own Kind rather than the caller's expectation.
func EvidenceToJSON(e model.Evidence) (EvidenceJSON, error) {
	out := EvidenceJSON{Kind: e.Kind.String()}
	switch e.Kind {
	case model.EvidenceClass:
		cls, err := e.AsClass()
		if err != nil {
			return out, err
		}
		out.Class = cls.Descriptor()
	case model.EvidenceMethod:
		m, err := e.AsMethod()
		if err != nil {
			return out, err
		}
		out.Method = m.FQDN()
	case model.EvidenceField:
		f, err := e.AsField()
		if err != nil {
			return out, err
		}
		out.Field = f.FQDN()
	case model.EvidenceString:
		s, err := e.AsString()
		if err != nil {
			return out, err
		}
		out.String = s
	case model.EvidenceFieldAccess:
		fa, err := e.AsFieldAccess()
		if err != nil {
			return out, err
		}
		out.FieldAccess = &FieldAccessJSON{
			Method:  fa.Site.Method.FQDN(),
			Offset:  fa.Site.Offset,
			Field:   fa.Field.FQDN(),
			IsWrite: fa.IsWrite,
		}
	case model.EvidenceNativeSymbol:
		ns, err := e.AsNativeSymbol()
		if err != nil {
			return out, err
		}
		out.NativeSymbol = &NativeSymbolJSON{Library: ns.Library, Name: ns.Name, Address: ns.Address, Size: ns.Size}
	case model.EvidenceInstruction:
		ci, err := e.AsInstruction()
		if err != nil {
			return out, err
		}
		out.Instruction = &InstructionJSON{Method: ci.Method.FQDN(), Offset: ci.Offset}
	default:
		return out, fmt.Errorf("output: unhandled evidence kind %v", e.Kind)
	}
	return out, nil
}

// EvidenceListToJSON converts a slice, stopping at the first conversion
// error (a malformed Evidence here means a query bug, not partial data to
// paper over).
func EvidenceListToJSON(evs []model.Evidence) ([]EvidenceJSON, error) {
	out := make([]EvidenceJSON, len(evs))
	for i, e := range evs {
		j, err := EvidenceToJSON(e)
		if err != nil {
			return nil, err
		}
		out[i] = j
	}
	return out, nil
}

// BranchingJSON is the wire shape for one flow.Branching.
type BranchingJSON struct {
	Method        string `json:"method"`
	PC            int    `json:"pc"`
	TakenPC       int    `json:"taken_pc"`
	FallthroughPC int    `json:"fallthrough_pc"`
	Dead          string `json:"dead"`
}

func BranchingToJSON(b flow.Branching) BranchingJSON {
	return BranchingJSON{
		Method:        b.Method.FQDN(),
		PC:            b.PC,
		TakenPC:       b.TakenPC,
		FallthroughPC: b.FallthroughPC,
		Dead:          b.Dead.String(),
	}
}

func BranchingListToJSON(bs []flow.Branching) []BranchingJSON {
	out := make([]BranchingJSON, len(bs))
	for i, b := range bs {
		out[i] = BranchingToJSON(b)
	}
	return out
}

// ValueJSON is the wire shape for one vm.Value: Kind names the variant,
// and exactly one of the typed fields is meaningful per kind.
type ValueJSON struct {
	Kind  string  `json:"kind"`
	Bool  bool    `json:"bool,omitempty"`
	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Str   string  `json:"string,omitempty"`
	RefID uint64  `json:"ref_id,omitempty"`
}

func ValueToJSON(v vm.Value) ValueJSON {
	out := ValueJSON{Kind: kindName(v.Kind)}
	switch v.Kind {
	case vm.KindBool:
		out.Bool = v.Bool()
	case vm.KindByte, vm.KindChar, vm.KindShort, vm.KindInt, vm.KindLong:
		n, _ := v.AsInt64()
		out.Int = n
	case vm.KindFloat:
		out.Float = float64(v.F32)
	case vm.KindDouble:
		out.Float = v.F64
	case vm.KindString:
		out.Str = v.Str
	case vm.KindReference:
		out.RefID = uint64(v.Ref)
	}
	return out
}

func kindName(k vm.Kind) string {
	switch k {
	case vm.KindBool:
		return "bool"
	case vm.KindByte:
		return "byte"
	case vm.KindChar:
		return "char"
	case vm.KindShort:
		return "short"
	case vm.KindInt:
		return "int"
	case vm.KindLong:
		return "long"
	case vm.KindFloat:
		return "float"
	case vm.KindDouble:
		return "double"
	case vm.KindReference:
		return "reference"
	case vm.KindString:
		return "string"
	case vm.KindArray:
		return "array"
	default:
		return "Unknown"
	}
}

// Write marshals v as indented JSON to w.
func Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteFile marshals v as indented JSON to dir/name.json, creating dir if
// needed.
func WriteFile(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()
	if err := Write(f, v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}
