package vm

import "math"

// intBinOp applies a 32-bit integer binary operator with the modulo-2^32
// wraparound Dalvik itself specifies (spec: "Integer ops wrap modulo 2^32 /
// 2^64, match Dalvik spec"). div/rem-by-zero is reported via ok=false so
// the caller can raise the emulated ArithmeticException.
func intBinOp(op string, a, b int32) (int32, bool) {
	switch op {
	case "add":
		return a + b, true
	case "sub":
		return a - b, true
	case "rsub":
		return b - a, true
	case "mul":
		return a * b, true
	case "div":
		if b == 0 {
			return 0, false
		}
		if a == math.MinInt32 && b == -1 {
			return math.MinInt32, true // Dalvik wraps this overflow rather than trapping
		}
		return a / b, true
	case "rem":
		if b == 0 {
			return 0, false
		}
		if a == math.MinInt32 && b == -1 {
			return 0, true
		}
		return a % b, true
	case "and":
		return a & b, true
	case "or":
		return a | b, true
	case "xor":
		return a ^ b, true
	case "shl":
		return a << (uint32(b) & 0x1f), true
	case "shr":
		return a >> (uint32(b) & 0x1f), true
	case "ushr":
		return int32(uint32(a) >> (uint32(b) & 0x1f)), true
	default:
		return 0, false
	}
}

func longBinOp(op string, a, b int64) (int64, bool) {
	switch op {
	case "add":
		return a + b, true
	case "sub":
		return a - b, true
	case "mul":
		return a * b, true
	case "div":
		if b == 0 {
			return 0, false
		}
		if a == math.MinInt64 && b == -1 {
			return math.MinInt64, true
		}
		return a / b, true
	case "rem":
		if b == 0 {
			return 0, false
		}
		if a == math.MinInt64 && b == -1 {
			return 0, true
		}
		return a % b, true
	case "and":
		return a & b, true
	case "or":
		return a | b, true
	case "xor":
		return a ^ b, true
	case "shl":
		return a << (uint64(b) & 0x3f), true
	case "shr":
		return a >> (uint64(b) & 0x3f), true
	case "ushr":
		return int64(uint64(a) >> (uint64(b) & 0x3f)), true
	default:
		return 0, false
	}
}

func floatBinOp(op string, a, b float32) float32 {
	switch op {
	case "add":
		return a + b
	case "sub":
		return a - b
	case "mul":
		return a * b
	case "div":
		return a / b
	case "rem":
		return float32(math.Mod(float64(a), float64(b)))
	default:
		return float32(math.NaN())
	}
}

func doubleBinOp(op string, a, b float64) float64 {
	switch op {
	case "add":
		return a + b
	case "sub":
		return a - b
	case "mul":
		return a * b
	case "div":
		return a / b
	case "rem":
		return math.Mod(a, b)
	default:
		return math.NaN()
	}
}

// cmp implements Dalvik's cmpl/cmpg/cmp-long 3-way comparison: -1, 0, or 1,
// with cmpl/cmpg differing only in which value NaN compares as (handled by
// the caller passing nanResult).
func cmpLong(a, b int64) int32 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float32, nanResult int32) int32 {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return nanResult
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpDouble(a, b float64, nanResult int32) int32 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return nanResult
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
