package fx

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// EasingFunc maps linear progress in [0,1] to eased progress in [0,1].
type EasingFunc func(t float64) float64

// DefaultEasing is used whenever a transition does not name one.
const DefaultEasing = "easeOutQuad"

// ErrUnknownEasing is matched by every UnknownEasingError.
var ErrUnknownEasing = errors.New("unknown easing")

type UnknownEasingError struct {
	Name string
}

func (e *UnknownEasingError) Error() string {
	return fmt.Sprintf("unknown easing %q", e.Name)
}

func (e *UnknownEasingError) Is(target error) bool {
	return target == ErrUnknownEasing
}

func Linear(t float64) float64 { return t }

func EaseInQuad(t float64) float64 { return t * t }

func EaseOutQuad(t float64) float64 { return t * (2 - t) }

func EaseInOutQuad(t float64) float64 {
	if t < .5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func EaseInCubic(t float64) float64 { return t * t * t }

func EaseOutCubic(t float64) float64 {
	t--
	return t*t*t + 1
}

func EaseInOutCubic(t float64) float64 {
	if t < .5 {
		return 4 * t * t * t
	}
	return (t-1)*(2*t-2)*(2*t-2) + 1
}

func EaseInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

var easings = map[string]EasingFunc{
	"linear":         Linear,
	"easeInQuad":     EaseInQuad,
	"easeOutQuad":    EaseOutQuad,
	"easeInOutQuad":  EaseInOutQuad,
	"easeInCubic":    EaseInCubic,
	"easeOutCubic":   EaseOutCubic,
	"easeInOutCubic": EaseInOutCubic,
	"easeInOutSine":  EaseInOutSine,
}

// Easing looks up a built-in easing by name. An empty name selects
// DefaultEasing.
func Easing(name string) (EasingFunc, error) {
	if name == "" {
		name = DefaultEasing
	}
	f, ok := easings[name]
	if !ok {
		return nil, &UnknownEasingError{Name: name}
	}
	return f, nil
}

// EasingOrLinear is Easing with the linear fallback applied on lookup failure.
// The lookup error is still returned so callers can report it.
func EasingOrLinear(name string) (EasingFunc, error) {
	f, err := Easing(name)
	if err != nil {
		return Linear, err
	}
	return f, nil
}
