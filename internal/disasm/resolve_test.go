package disasm

import (
	"testing"

	"dexlens/internal/model"
)

func TestResolveStringAndMethod(t *testing.T) {
	df := &model.DexFile{
		Strings: []string{"hello"},
		Methods: []model.RawMethodResolved{
			{Class: model.Type{Descriptor: "Ljava/lang/StringBuilder;"}, Name: "append", Proto: model.Proto{ReturnType: model.Type{Descriptor: "Ljava/lang/StringBuilder;"}}},
		},
	}

	insts := []Instruction{
		{Ref: RefString, PoolIdx: 0},
		{Ref: RefMethod, PoolIdx: 0},
	}
	Resolve(insts, df, nil)

	if insts[0].String == nil || *insts[0].String != "hello" {
		t.Fatalf("string = %v", insts[0].String)
	}
	if insts[1].Method == nil || insts[1].Method.Name != "append" {
		t.Fatalf("method = %v", insts[1].Method)
	}
	if insts[1].Method.Method != nil {
		t.Fatal("no Context was given; concrete *model.Method should stay nil")
	}
}

func TestResolveOutOfRangePoolIdxLeavesNil(t *testing.T) {
	df := &model.DexFile{Strings: []string{"only one"}}
	insts := []Instruction{{Ref: RefString, PoolIdx: 5}}
	Resolve(insts, df, nil)
	if insts[0].String != nil {
		t.Fatal("expected nil for out-of-range pool index")
	}
}
