package disasm

import "dexlens/internal/model"

// Resolve fills in the String/Type/Field/Method pointers on every
// instruction whose Ref names a constant-pool entry, using df's own pools
// for the raw lookup and ctx (optional) to find the concrete declaring
// *model.Field/*model.Method if one exists anywhere in the context. A nil
// ctx, or a reference to a class outside the analyzed dex set (framework
// code never included in the APK), leaves Field.Field/Method.Method nil —
// callers still get the class/name/type triple for reporting.
func Resolve(insts []Instruction, df *model.DexFile, ctx *model.Context) {
	for i := range insts {
		in := &insts[i]
		switch in.Ref {
		case RefString:
			if int(in.PoolIdx) < len(df.Strings) {
				s := df.Strings[in.PoolIdx]
				in.String = &s
			}
		case RefType:
			if int(in.PoolIdx) < len(df.Types) {
				t := df.Types[in.PoolIdx]
				in.Type = &t
			}
		case RefField:
			if int(in.PoolIdx) < len(df.Fields) {
				rf := df.Fields[in.PoolIdx]
				fr := &FieldRef{Class: rf.Class, Name: rf.Name, Type: rf.Type}
				if ctx != nil {
					if cls := ctx.ClassByDescriptor(rf.Class.Descriptor); cls != nil {
						fr.Field = cls.FindField(rf.Name, rf.Type.Descriptor)
					}
				}
				in.Field = fr
			}
		case RefMethod:
			if int(in.PoolIdx) < len(df.Methods) {
				rm := df.Methods[in.PoolIdx]
				mr := &MethodRef{Class: rm.Class, Name: rm.Name, Proto: rm.Proto}
				if ctx != nil {
					if cls := ctx.ClassByDescriptor(rm.Class.Descriptor); cls != nil {
						mr.Method = cls.FindMethod(rm.Name, rm.Proto.Descriptor())
					}
				}
				in.Method = mr
			}
		}
	}
}
