package disasm

// Format names the Dalvik instruction-encoding format (DEX bytecode spec
// naming: 10x, 12x, 22c, 35c, ...), which fixes how many code units an
// instruction occupies and how its operand bytes are packed.
type Format string

const (
	f10x Format = "10x"
	f12x Format = "12x"
	f11n Format = "11n"
	f11x Format = "11x"
	f10t Format = "10t"
	f20t Format = "20t"
	f22x Format = "22x"
	f21t Format = "21t"
	f21s Format = "21s"
	f21h Format = "21h"
	f21c Format = "21c"
	f23x Format = "23x"
	f22b Format = "22b"
	f22t Format = "22t"
	f22s Format = "22s"
	f22c Format = "22c"
	f32x Format = "32x"
	f30t Format = "30t"
	f31i Format = "31i"
	f31c Format = "31c"
	f31t Format = "31t"
	f35c Format = "35c"
	f3rc Format = "3rc"
	f51l Format = "51l"
)

// RefKind classifies which constant pool, if any, an instruction's trailing
// index operand resolves against.
type RefKind int

const (
	RefNone RefKind = iota
	RefString
	RefType
	RefField
	RefMethod
)

// opcodeInfo is the static, per-opcode entry of the dispatch table: its
// mnemonic, its encoding format, and the pool (if any) its index operand
// resolves against.
type opcodeInfo struct {
	Name   string
	Format Format
	Ref    RefKind
}

// opcodeTable maps the opcode byte (the low byte of the first code unit) to
// its static info. A missing entry decodes as Unknown — the instruction's
// raw code units are preserved verbatim and no operands are extracted,
// matching the DEX reader's tolerance for formats this repo doesn't need to
// evaluate (e.g. invoke-polymorphic, invoke-custom, method-handle opcodes).
var opcodeTable = map[byte]opcodeInfo{
	0x00: {"nop", f10x, RefNone},
	0x01: {"move", f12x, RefNone},
	0x02: {"move/from16", f22x, RefNone},
	0x03: {"move/16", f32x, RefNone},
	0x04: {"move-wide", f12x, RefNone},
	0x05: {"move-wide/from16", f22x, RefNone},
	0x06: {"move-wide/16", f32x, RefNone},
	0x07: {"move-object", f12x, RefNone},
	0x08: {"move-object/from16", f22x, RefNone},
	0x09: {"move-object/16", f32x, RefNone},
	0x0a: {"move-result", f11x, RefNone},
	0x0b: {"move-result-wide", f11x, RefNone},
	0x0c: {"move-result-object", f11x, RefNone},
	0x0d: {"move-exception", f11x, RefNone},
	0x0e: {"return-void", f10x, RefNone},
	0x0f: {"return", f11x, RefNone},
	0x10: {"return-wide", f11x, RefNone},
	0x11: {"return-object", f11x, RefNone},
	0x12: {"const/4", f11n, RefNone},
	0x13: {"const/16", f21s, RefNone},
	0x14: {"const", f31i, RefNone},
	0x15: {"const/high16", f21h, RefNone},
	0x16: {"const-wide/16", f21s, RefNone},
	0x17: {"const-wide/32", f31i, RefNone},
	0x18: {"const-wide", f51l, RefNone},
	0x19: {"const-wide/high16", f21h, RefNone},
	0x1a: {"const-string", f21c, RefString},
	0x1b: {"const-string/jumbo", f31c, RefString},
	0x1c: {"const-class", f21c, RefType},
	0x1d: {"monitor-enter", f11x, RefNone},
	0x1e: {"monitor-exit", f11x, RefNone},
	0x1f: {"check-cast", f21c, RefType},
	0x20: {"instance-of", f22c, RefType},
	0x21: {"array-length", f12x, RefNone},
	0x22: {"new-instance", f21c, RefType},
	0x23: {"new-array", f22c, RefType},
	0x24: {"filled-new-array", f35c, RefType},
	0x25: {"filled-new-array/range", f3rc, RefType},
	0x26: {"fill-array-data", f31t, RefNone},
	0x27: {"throw", f11x, RefNone},
	0x28: {"goto", f10t, RefNone},
	0x29: {"goto/16", f20t, RefNone},
	0x2a: {"goto/32", f30t, RefNone},
	0x2b: {"packed-switch", f31t, RefNone},
	0x2c: {"sparse-switch", f31t, RefNone},
	0x2d: {"cmpl-float", f23x, RefNone},
	0x2e: {"cmpg-float", f23x, RefNone},
	0x2f: {"cmpl-double", f23x, RefNone},
	0x30: {"cmpg-double", f23x, RefNone},
	0x31: {"cmp-long", f23x, RefNone},
	0x32: {"if-eq", f22t, RefNone},
	0x33: {"if-ne", f22t, RefNone},
	0x34: {"if-lt", f22t, RefNone},
	0x35: {"if-ge", f22t, RefNone},
	0x36: {"if-gt", f22t, RefNone},
	0x37: {"if-le", f22t, RefNone},
	0x38: {"if-eqz", f21t, RefNone},
	0x39: {"if-nez", f21t, RefNone},
	0x3a: {"if-ltz", f21t, RefNone},
	0x3b: {"if-gez", f21t, RefNone},
	0x3c: {"if-gtz", f21t, RefNone},
	0x3d: {"if-lez", f21t, RefNone},
	0x44: {"aget", f23x, RefNone},
	0x45: {"aget-wide", f23x, RefNone},
	0x46: {"aget-object", f23x, RefNone},
	0x47: {"aget-boolean", f23x, RefNone},
	0x48: {"aget-byte", f23x, RefNone},
	0x49: {"aget-char", f23x, RefNone},
	0x4a: {"aget-short", f23x, RefNone},
	0x4b: {"aput", f23x, RefNone},
	0x4c: {"aput-wide", f23x, RefNone},
	0x4d: {"aput-object", f23x, RefNone},
	0x4e: {"aput-boolean", f23x, RefNone},
	0x4f: {"aput-byte", f23x, RefNone},
	0x50: {"aput-char", f23x, RefNone},
	0x51: {"aput-short", f23x, RefNone},
	0x52: {"iget", f22c, RefField},
	0x53: {"iget-wide", f22c, RefField},
	0x54: {"iget-object", f22c, RefField},
	0x55: {"iget-boolean", f22c, RefField},
	0x56: {"iget-byte", f22c, RefField},
	0x57: {"iget-char", f22c, RefField},
	0x58: {"iget-short", f22c, RefField},
	0x59: {"iput", f22c, RefField},
	0x5a: {"iput-wide", f22c, RefField},
	0x5b: {"iput-object", f22c, RefField},
	0x5c: {"iput-boolean", f22c, RefField},
	0x5d: {"iput-byte", f22c, RefField},
	0x5e: {"iput-char", f22c, RefField},
	0x5f: {"iput-short", f22c, RefField},
	0x60: {"sget", f21c, RefField},
	0x61: {"sget-wide", f21c, RefField},
	0x62: {"sget-object", f21c, RefField},
	0x63: {"sget-boolean", f21c, RefField},
	0x64: {"sget-byte", f21c, RefField},
	0x65: {"sget-char", f21c, RefField},
	0x66: {"sget-short", f21c, RefField},
	0x67: {"sput", f21c, RefField},
	0x68: {"sput-wide", f21c, RefField},
	0x69: {"sput-object", f21c, RefField},
	0x6a: {"sput-boolean", f21c, RefField},
	0x6b: {"sput-byte", f21c, RefField},
	0x6c: {"sput-char", f21c, RefField},
	0x6d: {"sput-short", f21c, RefField},
	0x6e: {"invoke-virtual", f35c, RefMethod},
	0x6f: {"invoke-super", f35c, RefMethod},
	0x70: {"invoke-direct", f35c, RefMethod},
	0x71: {"invoke-static", f35c, RefMethod},
	0x72: {"invoke-interface", f35c, RefMethod},
	0x74: {"invoke-virtual/range", f3rc, RefMethod},
	0x75: {"invoke-super/range", f3rc, RefMethod},
	0x76: {"invoke-direct/range", f3rc, RefMethod},
	0x77: {"invoke-static/range", f3rc, RefMethod},
	0x78: {"invoke-interface/range", f3rc, RefMethod},
	0x7b: {"neg-int", f12x, RefNone},
	0x7c: {"not-int", f12x, RefNone},
	0x7d: {"neg-long", f12x, RefNone},
	0x7e: {"not-long", f12x, RefNone},
	0x7f: {"neg-float", f12x, RefNone},
	0x80: {"neg-double", f12x, RefNone},
	0x81: {"int-to-long", f12x, RefNone},
	0x82: {"int-to-float", f12x, RefNone},
	0x83: {"int-to-double", f12x, RefNone},
	0x84: {"long-to-int", f12x, RefNone},
	0x85: {"long-to-float", f12x, RefNone},
	0x86: {"long-to-double", f12x, RefNone},
	0x87: {"float-to-int", f12x, RefNone},
	0x88: {"float-to-long", f12x, RefNone},
	0x89: {"float-to-double", f12x, RefNone},
	0x8a: {"double-to-int", f12x, RefNone},
	0x8b: {"double-to-long", f12x, RefNone},
	0x8c: {"double-to-float", f12x, RefNone},
	0x8d: {"int-to-byte", f12x, RefNone},
	0x8e: {"int-to-char", f12x, RefNone},
	0x8f: {"int-to-short", f12x, RefNone},
	0x90: {"add-int", f23x, RefNone},
	0x91: {"sub-int", f23x, RefNone},
	0x92: {"mul-int", f23x, RefNone},
	0x93: {"div-int", f23x, RefNone},
	0x94: {"rem-int", f23x, RefNone},
	0x95: {"and-int", f23x, RefNone},
	0x96: {"or-int", f23x, RefNone},
	0x97: {"xor-int", f23x, RefNone},
	0x98: {"shl-int", f23x, RefNone},
	0x99: {"shr-int", f23x, RefNone},
	0x9a: {"ushr-int", f23x, RefNone},
	0x9b: {"add-long", f23x, RefNone},
	0x9c: {"sub-long", f23x, RefNone},
	0x9d: {"mul-long", f23x, RefNone},
	0x9e: {"div-long", f23x, RefNone},
	0x9f: {"rem-long", f23x, RefNone},
	0xa0: {"and-long", f23x, RefNone},
	0xa1: {"or-long", f23x, RefNone},
	0xa2: {"xor-long", f23x, RefNone},
	0xa3: {"shl-long", f23x, RefNone},
	0xa4: {"shr-long", f23x, RefNone},
	0xa5: {"ushr-long", f23x, RefNone},
	0xa6: {"add-float", f23x, RefNone},
	0xa7: {"sub-float", f23x, RefNone},
	0xa8: {"mul-float", f23x, RefNone},
	0xa9: {"div-float", f23x, RefNone},
	0xaa: {"rem-float", f23x, RefNone},
	0xab: {"add-double", f23x, RefNone},
	0xac: {"sub-double", f23x, RefNone},
	0xad: {"mul-double", f23x, RefNone},
	0xae: {"div-double", f23x, RefNone},
	0xaf: {"rem-double", f23x, RefNone},
	0xb0: {"add-int/2addr", f12x, RefNone},
	0xb1: {"sub-int/2addr", f12x, RefNone},
	0xb2: {"mul-int/2addr", f12x, RefNone},
	0xb3: {"div-int/2addr", f12x, RefNone},
	0xb4: {"rem-int/2addr", f12x, RefNone},
	0xb5: {"and-int/2addr", f12x, RefNone},
	0xb6: {"or-int/2addr", f12x, RefNone},
	0xb7: {"xor-int/2addr", f12x, RefNone},
	0xb8: {"shl-int/2addr", f12x, RefNone},
	0xb9: {"shr-int/2addr", f12x, RefNone},
	0xba: {"ushr-int/2addr", f12x, RefNone},
	0xbb: {"add-long/2addr", f12x, RefNone},
	0xbc: {"sub-long/2addr", f12x, RefNone},
	0xbd: {"mul-long/2addr", f12x, RefNone},
	0xbe: {"div-long/2addr", f12x, RefNone},
	0xbf: {"rem-long/2addr", f12x, RefNone},
	0xc0: {"and-long/2addr", f12x, RefNone},
	0xc1: {"or-long/2addr", f12x, RefNone},
	0xc2: {"xor-long/2addr", f12x, RefNone},
	0xc3: {"shl-long/2addr", f12x, RefNone},
	0xc4: {"shr-long/2addr", f12x, RefNone},
	0xc5: {"ushr-long/2addr", f12x, RefNone},
	0xc6: {"add-float/2addr", f12x, RefNone},
	0xc7: {"sub-float/2addr", f12x, RefNone},
	0xc8: {"mul-float/2addr", f12x, RefNone},
	0xc9: {"div-float/2addr", f12x, RefNone},
	0xca: {"rem-float/2addr", f12x, RefNone},
	0xcb: {"add-double/2addr", f12x, RefNone},
	0xcc: {"sub-double/2addr", f12x, RefNone},
	0xcd: {"mul-double/2addr", f12x, RefNone},
	0xce: {"div-double/2addr", f12x, RefNone},
	0xcf: {"rem-double/2addr", f12x, RefNone},
	0xd0: {"add-int/lit16", f22s, RefNone},
	0xd1: {"rsub-int", f22s, RefNone},
	0xd2: {"mul-int/lit16", f22s, RefNone},
	0xd3: {"div-int/lit16", f22s, RefNone},
	0xd4: {"rem-int/lit16", f22s, RefNone},
	0xd5: {"and-int/lit16", f22s, RefNone},
	0xd6: {"or-int/lit16", f22s, RefNone},
	0xd7: {"xor-int/lit16", f22s, RefNone},
	0xd8: {"add-int/lit8", f22b, RefNone},
	0xd9: {"rsub-int/lit8", f22b, RefNone},
	0xda: {"mul-int/lit8", f22b, RefNone},
	0xdb: {"div-int/lit8", f22b, RefNone},
	0xdc: {"rem-int/lit8", f22b, RefNone},
	0xdd: {"and-int/lit8", f22b, RefNone},
	0xde: {"or-int/lit8", f22b, RefNone},
	0xdf: {"xor-int/lit8", f22b, RefNone},
	0xe0: {"shl-int/lit8", f22b, RefNone},
	0xe1: {"shr-int/lit8", f22b, RefNone},
	0xe2: {"ushr-int/lit8", f22b, RefNone},
}

// branchOpcodeFormats is the set of instruction formats that carry a branch
// offset (goto, if-*, and the 31t switch/fill-array-data family).
var branchOpcodeFormats = map[Format]bool{
	f10t: true, f20t: true, f30t: true, // goto family
	f21t: true, f22t: true, // if-*z / if-*
	f31t: true, // packed-switch / sparse-switch / fill-array-data (only switches branch)
}
