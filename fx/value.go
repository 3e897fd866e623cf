package fx

import (
	"strconv"

	"golang.org/x/exp/constraints"
)

// Kind identifies the shape stored in a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindScalar
	KindRange
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRange:
		return "range"
	case KindIndex:
		return "index"
	default:
		return "none"
	}
}

// Value is the animatable part of a slot. Scalars drive opacities, ranges drive
// vertical bounds and indices drive the tooltip position.
type Value struct {
	Kind     Kind
	X        float64
	Min, Max float64
}

func Scalar(x float64) Value {
	return Value{Kind: KindScalar, X: x}
}

func Range(min, max float64) Value {
	return Value{Kind: KindRange, Min: min, Max: max}
}

func Index(i float64) Value {
	return Value{Kind: KindIndex, X: i}
}

// Lerp interpolates every numeric field of v toward to. The result always has
// the shape of to.
func (v Value) Lerp(to Value, t float64) Value {
	switch to.Kind {
	case KindRange:
		return Range(lerp(v.Min, to.Min, t), lerp(v.Max, to.Max, t))
	case KindScalar, KindIndex:
		return Value{Kind: to.Kind, X: lerp(v.X, to.X, t)}
	default:
		return to
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindRange:
		return "[" + strconv.FormatFloat(v.Min, 'g', -1, 64) + "," + strconv.FormatFloat(v.Max, 'g', -1, 64) + "]"
	case KindScalar, KindIndex:
		return strconv.FormatFloat(v.X, 'g', -1, 64)
	default:
		return "<none>"
	}
}

func lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	return max(lo, min(hi, v))
}
