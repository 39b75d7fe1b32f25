// flags.go - ALU condition flags shared across BCF and SX
package core

// Flags are combinational from the current A/B registers — never derived from a delayed or latched ALU result.
type Flags struct {
	Zf bool // A == 0
	Nf bool // A[31] (A negative, signed)
	Eq bool // A == B
	Lt bool // signed(A) < signed(B)
}

// ComputeFlags derives the four condition flags from the current A/B
// register values.
func ComputeFlags(a, b uint32) Flags {
	return Flags{
		Zf: a == 0,
		Nf: int32(a) < 0,
		Eq: a == b,
		Lt: int32(a) < int32(b),
	}
}
