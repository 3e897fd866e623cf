// Package drag turns raw pointer input into start/move/end gestures that
// behave the same for a mouse and a single finger.
package drag

type Kind uint8

const (
	Start Kind = iota
	Move
	End
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Move:
		return "move"
	default:
		return "end"
	}
}

// Event positions are in the coordinate space of the tracked control.
// OffsetX/OffsetY locate the press inside the dragged element.
type Event struct {
	Kind           Kind
	X, Y           float64
	StartX, StartY float64
	OffsetX        float64
	OffsetY        float64
}

// Source delivers drag events until the returned function is called.
type Source interface {
	Subscribe(func(Event)) (unsubscribe func())
}

// Pointer is one raw pointer sample.
type Pointer struct {
	ID   int
	X, Y float64
	// Primary is false for secondary mouse buttons.
	Primary bool
}

// Tracker follows at most one pointer at a time. A second pointer going down
// or a secondary button ends the gesture.
type Tracker struct {
	active         bool
	id             int
	x, y           float64
	startX, startY float64
	offX, offY     float64
	subs           subscribers
}

var _ Source = (*Tracker)(nil)

func (t *Tracker) Subscribe(fn func(Event)) func() {
	return t.subs.add(fn)
}

// Active reports whether a gesture is in progress.
func (t *Tracker) Active() bool {
	return t.active
}

// Press begins a gesture. offX and offY locate the press inside the element
// being dragged.
func (t *Tracker) Press(p Pointer, offX, offY float64) {
	if t.active {
		if p.ID != t.id {
			t.end()
		}
		return
	}
	if !p.Primary {
		return
	}
	t.active = true
	t.id = p.ID
	t.x, t.y = p.X, p.Y
	t.startX, t.startY = p.X, p.Y
	t.offX, t.offY = offX, offY
	t.emit(Start)
}

func (t *Tracker) Move(p Pointer) {
	if !t.active || p.ID != t.id {
		return
	}
	if !p.Primary {
		t.end()
		return
	}
	t.x, t.y = p.X, p.Y
	t.emit(Move)
}

func (t *Tracker) Release(p Pointer) {
	if !t.active || p.ID != t.id {
		return
	}
	t.x, t.y = p.X, p.Y
	t.end()
}

// Cancel ends the gesture where it last was.
func (t *Tracker) Cancel() {
	if t.active {
		t.end()
	}
}

func (t *Tracker) end() {
	t.active = false
	t.emit(End)
}

func (t *Tracker) emit(k Kind) {
	t.subs.notify(Event{
		Kind:    k,
		X:       t.x,
		Y:       t.y,
		StartX:  t.startX,
		StartY:  t.startY,
		OffsetX: t.offX,
		OffsetY: t.offY,
	})
}

type subscriber struct {
	id int
	fn func(Event)
}

type subscribers struct {
	next int
	list []subscriber
}

func (s *subscribers) add(fn func(Event)) func() {
	s.next++
	id := s.next
	s.list = append(s.list, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.list {
			if sub.id == id {
				s.list = append(s.list[:i:i], s.list[i+1:]...)
				return
			}
		}
	}
}

func (s *subscribers) notify(ev Event) {
	for _, sub := range s.list {
		sub.fn(ev)
	}
}
