// Package input maps GLFW keys and mouse events to viewer actions and
// collects typed text for the command line.
package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical viewer action, not a physical key.
type Action int

const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionToggleCommand
	ActionSubmit
	ActionErase
	ActionPick
	ActionToggleOutline
	ActionToggleProfiling
	ActionQuit
	ActionCount // array size
)

// Manager keeps per-frame action state. GLFW callbacks write into it and the
// frame loop reads it, then calls PostUpdate.
type Manager struct {
	mu sync.RWMutex

	keyToActions         map[glfw.Key][]Action
	mouseButtonToActions map[glfw.MouseButton][]Action

	current      [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool

	// Typing is on while the command line has focus; movement keys then
	// produce text instead of actions.
	typing bool
	text   []rune

	scroll             float64
	cursorX, cursorY   float64
	cursorDX, cursorDY float64
	cursorSeen         bool
}

// NewManager returns a manager with the default bindings.
func NewManager() *Manager {
	m := &Manager{
		keyToActions:         make(map[glfw.Key][]Action),
		mouseButtonToActions: make(map[glfw.MouseButton][]Action),
	}

	m.BindKey(glfw.KeyW, ActionMoveForward)
	m.BindKey(glfw.KeyS, ActionMoveBackward)
	m.BindKey(glfw.KeyA, ActionMoveLeft)
	m.BindKey(glfw.KeyD, ActionMoveRight)
	m.BindKey(glfw.KeyE, ActionMoveUp)
	m.BindKey(glfw.KeySpace, ActionMoveUp)
	m.BindKey(glfw.KeyQ, ActionMoveDown)
	m.BindKey(glfw.KeyLeftShift, ActionMoveDown)
	m.BindKey(glfw.KeyTab, ActionToggleCommand)
	m.BindKey(glfw.KeyEnter, ActionSubmit)
	m.BindKey(glfw.KeyKPEnter, ActionSubmit)
	m.BindKey(glfw.KeyBackspace, ActionErase)
	m.BindKey(glfw.KeyF, ActionToggleOutline)
	m.BindKey(glfw.KeyV, ActionToggleProfiling)
	m.BindKey(glfw.KeyEscape, ActionQuit)

	m.BindMouseButton(glfw.MouseButtonLeft, ActionPick)

	return m
}

// BindKey adds action to key. A key may drive several actions.
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	m.keyToActions[key] = append(m.keyToActions[key], action)
	m.mu.Unlock()
}

// BindMouseButton adds action to button.
func (m *Manager) BindMouseButton(button glfw.MouseButton, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	m.mouseButtonToActions[button] = append(m.mouseButtonToActions[button], action)
	m.mu.Unlock()
}

// textModeActions are the only actions live while typing.
func textModeAction(a Action) bool {
	switch a {
	case ActionToggleCommand, ActionSubmit, ActionErase, ActionQuit:
		return true
	}
	return false
}

func (m *Manager) apply(actions []Action, pressed bool) {
	for _, a := range actions {
		if m.typing && pressed && !textModeAction(a) {
			continue
		}
		if pressed && !m.current[a] {
			m.justPressed[a] = true
		}
		if !pressed && m.current[a] {
			m.justReleased[a] = true
		}
		m.current[a] = pressed
	}
}

// HandleKeyEvent updates state for a key event. Repeats count as held.
func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions, ok := m.keyToActions[key]
	if !ok {
		return
	}
	if action == glfw.Repeat && m.typing && key == glfw.KeyBackspace {
		m.justPressed[ActionErase] = true
		return
	}
	m.apply(actions, action == glfw.Press || action == glfw.Repeat)
}

// HandleMouseButtonEvent updates state for a mouse button event.
func (m *Manager) HandleMouseButtonEvent(button glfw.MouseButton, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions, ok := m.mouseButtonToActions[button]
	if !ok {
		return
	}
	m.apply(actions, action == glfw.Press)
}

// HandleChar appends typed text while the command line has focus.
func (m *Manager) HandleChar(r rune) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.typing {
		m.text = append(m.text, r)
	}
}

// HandleScroll accumulates wheel movement until TakeScroll.
func (m *Manager) HandleScroll(dy float64) {
	m.mu.Lock()
	m.scroll += dy
	m.mu.Unlock()
}

// HandleCursor records the cursor position; the first sample only anchors.
func (m *Manager) HandleCursor(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursorSeen {
		m.cursorDX += x - m.cursorX
		m.cursorDY += y - m.cursorY
	}
	m.cursorX, m.cursorY = x, y
	m.cursorSeen = true
}

// Attach installs the GLFW callbacks on window.
func (m *Manager) Attach(window *glfw.Window) {
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		m.HandleKeyEvent(key, action)
	})
	window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		m.HandleMouseButtonEvent(button, action)
	})
	window.SetCharCallback(func(_ *glfw.Window, r rune) {
		m.HandleChar(r)
	})
	window.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		m.HandleScroll(dy)
	})
	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		m.HandleCursor(x, y)
	})
}

// PostUpdate clears edge flags and per-frame deltas. Call once at the end of
// every frame.
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range ActionCount {
		m.justPressed[i] = false
		m.justReleased[i] = false
	}
	m.cursorDX, m.cursorDY = 0, 0
}

// IsActive reports whether action is held.
func (m *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current[action]
}

// JustPressed reports whether action went down this frame.
func (m *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justPressed[action]
}

// JustReleased reports whether action went up this frame.
func (m *Manager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justReleased[action]
}

// SetTyping switches the command line focus. Entering text mode releases all
// held movement.
func (m *Manager) SetTyping(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typing = on
	if on {
		for a := range ActionCount {
			if !textModeAction(a) {
				m.current[a] = false
			}
		}
	}
}

// Typing reports whether the command line has focus.
func (m *Manager) Typing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.typing
}

// Text returns the command line contents.
func (m *Manager) Text() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return string(m.text)
}

// Erase drops the last typed rune.
func (m *Manager) Erase() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.text); n > 0 {
		m.text = m.text[:n-1]
	}
}

// TakeText returns and clears the command line.
func (m *Manager) TakeText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := string(m.text)
	m.text = m.text[:0]
	return s
}

// TakeScroll returns and clears the accumulated wheel movement.
func (m *Manager) TakeScroll() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.scroll
	m.scroll = 0
	return s
}

// CursorDelta returns the cursor movement since the last PostUpdate.
func (m *Manager) CursorDelta() (dx, dy float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursorDX, m.cursorDY
}
