// Package fx stores named animation slots and advances their timed
// transitions once per frame.
//
// The engine never schedules work on its own. Hosts call Tick from their frame
// callback while HasActiveWork reports true and stay idle otherwise.
package fx

import (
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultDuration is used when a slot is inverted without ever having run a
// transition.
const DefaultDuration = 350 * time.Millisecond

// ErrDuplicateSlot is returned by Create for a name that is already registered.
var ErrDuplicateSlot = errors.New("duplicate slot")

// Transition is a timed interpolation between two values. From is where the
// interpolation started and Origin the resting value the transition left, which
// differ once a transition has been inverted.
type Transition struct {
	From, To Value
	Origin   Value
	Duration time.Duration
	Easing   EasingFunc
	// Remove deletes the slot once the transition completes.
	Remove bool
	// Pos is the eased progress computed by the most recent tick.
	Pos float64

	start   time.Time
	started bool
	linear  float64
	// full is the time a whole Origin to To run takes and offset how much of
	// it lies behind From.
	full   time.Duration
	offset time.Duration
}

// Slot is a named piece of animatable state. Data carries any payload that
// is not interpolated, such as the label stride a slot stands for.
type Slot struct {
	Name  string
	Value Value
	Data  any

	fx       *Transition
	rest     Value
	hasRest  bool
	lastDur  time.Duration
	lastEase EasingFunc
}

// Transition returns a copy of the running transition.
func (s *Slot) Transition() (Transition, bool) {
	if s.fx == nil {
		return Transition{}, false
	}
	return *s.fx, true
}

// Active reports whether a transition is running on the slot.
func (s *Slot) Active() bool {
	return s.fx != nil
}

// Target returns the value the running transition is heading to.
func (s *Slot) Target() (Value, bool) {
	if s.fx == nil {
		return Value{}, false
	}
	return s.fx.To, true
}

// Entry describes one slot that changed during a tick.
type Entry struct {
	Value Value
	Data  any
	Pos   float64
	// Done is set when the transition finished on this tick.
	Done bool
	// Removed is set when finishing the transition deleted the slot.
	Removed bool
}

// Frame maps slot names to the entries that changed during one tick.
type Frame map[string]Entry

// RedrawFunc is invoked at most once per tick.
type RedrawFunc func(Frame)

type Engine struct {
	slots  map[string]*Slot
	order  []string
	redraw RedrawFunc
	dirty  bool
}

func New(redraw RedrawFunc) *Engine {
	return &Engine{
		slots:  make(map[string]*Slot),
		redraw: redraw,
	}
}

// Create registers a new slot holding v.
func (e *Engine) Create(name string, v Value, data any) (*Slot, error) {
	if _, ok := e.slots[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateSlot, "slot %q", name)
	}
	return e.insert(name, v, data), nil
}

// Put creates the slot or overwrites its value and payload, cancelling any
// running transition.
func (e *Engine) Put(name string, v Value, data any) *Slot {
	s, ok := e.slots[name]
	if !ok {
		return e.insert(name, v, data)
	}
	s.Value = v
	s.Data = data
	s.fx = nil
	e.dirty = true
	return s
}

func (e *Engine) insert(name string, v Value, data any) *Slot {
	s := &Slot{Name: name, Value: v, Data: data}
	e.slots[name] = s
	e.order = append(e.order, name)
	e.dirty = true
	return s
}

func (e *Engine) delete(name string) {
	if _, ok := e.slots[name]; !ok {
		return
	}
	delete(e.slots, name)
	if i := slices.Index(e.order, name); i >= 0 {
		e.order = slices.Delete(e.order, i, i+1)
	}
	e.dirty = true
}

func (e *Engine) Slot(name string) (*Slot, bool) {
	s, ok := e.slots[name]
	return s, ok
}

// Group returns the slots named "<prefix>:<anything>" in creation order.
func (e *Engine) Group(prefix string) []*Slot {
	prefix += ":"
	var out []*Slot
	for _, name := range e.order {
		if strings.HasPrefix(name, prefix) {
			out = append(out, e.slots[name])
		}
	}
	return out
}

// Start runs a transition on the named slot, creating the slot if needed and
// replacing any transition already running there. A nil data keeps the
// slot's payload and a nil easing selects DefaultEasing.
func (e *Engine) Start(name string, data any, from, to Value, d time.Duration, easing EasingFunc, remove bool) *Slot {
	s, ok := e.slots[name]
	if !ok {
		s = e.insert(name, from, data)
	} else if data != nil {
		s.Data = data
	}
	if easing == nil {
		easing = EaseOutQuad
	}
	s.Value = from
	s.fx = &Transition{
		From:     from,
		To:       to,
		Origin:   from,
		Duration: d,
		Easing:   easing,
		Remove:   remove,
		full:     d,
	}
	s.lastDur = d
	s.lastEase = easing
	return s
}

// Invert flips the direction of the slot's transition: it heads back to the
// value it left and will rest on the old target if inverted again. The
// current value becomes the interpolation start, so nothing jumps, and the
// way back takes as long as the way there took so far. A slot at rest animates toward the value it held
// before its last transition, or toward 1-x for a scalar that never moved.
// Invert reports false when the slot does not exist or has nowhere to go.
func (e *Engine) Invert(name string, remove bool) bool {
	s, ok := e.slots[name]
	if !ok {
		return false
	}
	if tr := s.fx; tr != nil {
		done := tr.offset + time.Duration(float64(tr.Duration)*tr.linear)
		s.fx = &Transition{
			From:     s.Value,
			To:       tr.Origin,
			Origin:   tr.To,
			Duration: done,
			Easing:   tr.Easing,
			Remove:   remove,
			full:     tr.full,
			offset:   tr.full - done,
		}
		return true
	}
	var to Value
	switch {
	case s.hasRest:
		to = s.rest
	case s.Value.Kind == KindScalar:
		to = Scalar(1 - s.Value.X)
	default:
		return false
	}
	d, ease := s.lastDur, s.lastEase
	if d == 0 {
		d = DefaultDuration
	}
	e.Start(name, nil, s.Value, to, d, ease, remove)
	return true
}

// Remove cancels the slot's transition. The value stays frozen where it is
// unless immediate is set, in which case the slot is deleted.
func (e *Engine) Remove(name string, immediate bool) {
	s, ok := e.slots[name]
	if !ok {
		return
	}
	if immediate {
		e.delete(name)
		return
	}
	if s.fx != nil {
		s.fx = nil
		e.dirty = true
	}
}

// RemoveGroup applies Remove to every slot in the group.
func (e *Engine) RemoveGroup(prefix string, immediate bool) {
	for _, s := range e.Group(prefix) {
		e.Remove(s.Name, immediate)
	}
}

// Clear drops every running transition at once. Slots land on their target
// value, and slots whose transition would have deleted them are deleted.
func (e *Engine) Clear() {
	for _, name := range slices.Clone(e.order) {
		s := e.slots[name]
		if s.fx == nil {
			continue
		}
		if s.fx.Remove {
			e.delete(name)
			continue
		}
		s.rest, s.hasRest = s.fx.Origin, true
		s.Value = s.fx.To
		s.fx = nil
	}
	e.dirty = true
}

// Invalidate requests one redraw on the next tick.
func (e *Engine) Invalidate() {
	e.dirty = true
}

// HasActiveWork reports whether the next Tick would do anything.
func (e *Engine) HasActiveWork() bool {
	if e.dirty {
		return true
	}
	for _, s := range e.slots {
		if s.fx != nil {
			return true
		}
	}
	return false
}

// Tick advances every running transition to now. Transitions first seen by
// this tick start at now. The redraw callback runs once if anything changed
// or a redraw was requested.
func (e *Engine) Tick(now time.Time) Frame {
	frame := Frame{}
	for _, name := range slices.Clone(e.order) {
		s, ok := e.slots[name]
		if !ok || s.fx == nil {
			continue
		}
		tr := s.fx
		if !tr.started {
			tr.start, tr.started = now, true
		}
		t := 1.0
		if tr.Duration > 0 {
			t = clamp(float64(now.Sub(tr.start))/float64(tr.Duration), 0, 1)
		}
		tr.linear = t
		tr.Pos = tr.Easing(t)
		s.Value = tr.From.Lerp(tr.To, tr.Pos)
		entry := Entry{Value: s.Value, Data: s.Data, Pos: tr.Pos}
		if t >= 1 {
			s.Value = tr.To
			s.rest, s.hasRest = tr.Origin, true
			s.fx = nil
			entry.Value, entry.Pos, entry.Done = tr.To, 1, true
			if tr.Remove {
				e.delete(name)
				entry.Removed = true
			}
		}
		frame[name] = entry
	}
	if len(frame) > 0 || e.dirty {
		e.dirty = false
		if e.redraw != nil {
			e.redraw(frame)
		}
	}
	return frame
}
