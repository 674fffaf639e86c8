package window

// inputState is the polled keyboard and mouse state fed by the platform callbacks.
type inputState struct {
	keys    map[uint32]bool
	buttons map[MouseButton]bool

	// dx, dy accumulate cursor movement between two beginFrame calls.
	dx, dy float32

	// lastX, lastY are the previous cursor position, valid once hasLast is set.
	lastX, lastY float64
	hasLast      bool
}

func newInputState() inputState {
	return inputState{
		keys:    make(map[uint32]bool),
		buttons: make(map[MouseButton]bool),
	}
}

func (s *inputState) beginFrame() {
	s.dx, s.dy = 0, 0
}

func (s *inputState) setKey(keyCode uint32, down bool) {
	if down {
		s.keys[keyCode] = true
	} else {
		delete(s.keys, keyCode)
	}
}

func (s *inputState) setButton(button MouseButton, down bool) {
	if down {
		s.buttons[button] = true
	} else {
		delete(s.buttons, button)
	}
}

// move records a cursor position. The first position after creation or a warp only seeds the
// reference point.
func (s *inputState) move(x, y float64) {
	if s.hasLast {
		s.dx += float32(x - s.lastX)
		s.dy += float32(y - s.lastY)
	}
	s.lastX, s.lastY = x, y
	s.hasLast = true
}

func (s *inputState) warp(x, y float64) {
	s.lastX, s.lastY = x, y
	s.hasLast = true
}
