package drag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func record(t *Tracker) *[]Event {
	var events []Event
	t.Subscribe(func(ev Event) { events = append(events, ev) })
	return &events
}

func kinds(events []Event) []Kind {
	out := make([]Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestGesture(t *testing.T) {
	var tr Tracker
	events := record(&tr)
	tr.Press(Pointer{ID: 1, X: 10, Y: 5, Primary: true}, 3, 2)
	tr.Move(Pointer{ID: 1, X: 20, Y: 6, Primary: true})
	tr.Release(Pointer{ID: 1, X: 25, Y: 7, Primary: true})

	assert.Equal(t, []Kind{Start, Move, End}, kinds(*events))
	last := (*events)[2]
	assert.Equal(t, 25.0, last.X)
	assert.Equal(t, 10.0, last.StartX)
	assert.Equal(t, 3.0, last.OffsetX)
	assert.Equal(t, 2.0, last.OffsetY)
	assert.False(t, tr.Active())
}

func TestSecondPointerEnds(t *testing.T) {
	var tr Tracker
	events := record(&tr)
	tr.Press(Pointer{ID: 1, X: 10, Primary: true}, 0, 0)
	tr.Press(Pointer{ID: 2, X: 50, Primary: true}, 0, 0)
	tr.Move(Pointer{ID: 1, X: 20, Primary: true})
	tr.Move(Pointer{ID: 2, X: 60, Primary: true})
	assert.Equal(t, []Kind{Start, End}, kinds(*events))
}

func TestSecondaryButton(t *testing.T) {
	var tr Tracker
	events := record(&tr)
	tr.Press(Pointer{ID: 1, Primary: false}, 0, 0)
	assert.Empty(t, *events)

	tr.Press(Pointer{ID: 1, Primary: true}, 0, 0)
	tr.Move(Pointer{ID: 1, X: 4, Primary: false})
	assert.Equal(t, []Kind{Start, End}, kinds(*events))
}

func TestUnsubscribe(t *testing.T) {
	var tr Tracker
	count := 0
	stop := tr.Subscribe(func(Event) { count++ })
	tr.Press(Pointer{ID: 1, Primary: true}, 0, 0)
	stop()
	tr.Cancel()
	assert.Equal(t, 1, count)
}
