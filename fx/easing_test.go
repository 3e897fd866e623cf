package fx

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasingEndpoints(t *testing.T) {
	for name, f := range easings {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0, f(0), 1e-12)
			assert.InDelta(t, 1, f(1), 1e-12)
			for i := 0; i <= 10; i++ {
				v := f(float64(i) / 10)
				assert.GreaterOrEqual(t, v, -1e-12)
				assert.LessOrEqual(t, v, 1+1e-12)
			}
		})
	}
}

func TestEasingLookup(t *testing.T) {
	f, err := Easing("")
	require.NoError(t, err)
	assert.Equal(t, EaseOutQuad(.3), f(.3))

	_, err = Easing("bounce")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEasing))
	var unknown *UnknownEasingError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "bounce", unknown.Name)

	f, err = EasingOrLinear("bounce")
	assert.Error(t, err)
	assert.Equal(t, .3, f(.3))
}
