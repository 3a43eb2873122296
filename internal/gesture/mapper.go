// Package gesture turns pointer drag samples into swipe intents.
package gesture

import (
	"errors"
	"math"
	"sync"

	"CountrySwipe/internal/domain/models"
)

var (
	// ErrLocked is returned while a committed card is still leaving the screen.
	ErrLocked = errors.New("gesture: card is locked until the exit transition completes")
	// ErrNoSession is returned for moves or releases without a preceding press.
	ErrNoSession = errors.New("gesture: no drag in progress")
)

type Config struct {
	ThresholdX      float64
	ThresholdY      float64
	Sensitivity     float64
	RotationDivisor float64
}

func DefaultConfig() Config {
	return Config{ThresholdX: 100, ThresholdY: 100, Sensitivity: 150, RotationDivisor: 20}
}

// Sign is the direction hint rendered while dragging.
type Sign string

const (
	SignNone  Sign = "none"
	SignRight Sign = "right"
	SignLeft  Sign = "left"
	SignUp    Sign = "up"
)

// Feedback is the continuous visual state of a card during a drag.
type Feedback struct {
	OffsetX   float64 `json:"offset_x"`
	OffsetY   float64 `json:"offset_y"`
	Rotation  float64 `json:"rotation"`
	Intensity float64 `json:"intensity"`
	Sign      Sign    `json:"sign"`
}

// Classify maps a release offset onto an intent. Horizontal thresholds are checked first.
func (c Config) Classify(x, y float64) models.Intent {
	switch {
	case x > c.ThresholdX:
		return models.IntentLong
	case x < -c.ThresholdX:
		return models.IntentShort
	case y < -c.ThresholdY:
		return models.IntentSkip
	}
	return models.IntentNone
}

// Feedback computes the drag visuals for an offset.
func (c Config) Feedback(x, y float64) Feedback {
	fb := Feedback{OffsetX: x, OffsetY: y, Rotation: x / c.RotationDivisor, Sign: SignNone}

	var axis float64
	switch {
	case y < 0 && math.Abs(y) > math.Abs(x):
		fb.Sign, axis = SignUp, y
	case x > 0:
		fb.Sign, axis = SignRight, x
	case x < 0:
		fb.Sign, axis = SignLeft, x
	}
	fb.Intensity = math.Min(math.Abs(axis)/c.Sensitivity, 1)
	return fb
}

type phase int

const (
	idle phase = iota
	dragging
	committed
)

// Mapper tracks a single drag session on the top card. It fires at most once per release.
type Mapper struct {
	mu     sync.Mutex
	cfg    Config
	phase  phase
	startX float64
	startY float64
	last   Feedback
}

func NewMapper(cfg Config) *Mapper {
	return &Mapper{cfg: cfg}
}

func (m *Mapper) Config() Config {
	return m.cfg
}

// Press starts a drag at the given pointer position, discarding any unfinished drag.
func (m *Mapper) Press(x, y float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == committed {
		return ErrLocked
	}
	m.phase = dragging
	m.startX, m.startY = x, y
	m.last = m.cfg.Feedback(0, 0)
	return nil
}

// Move records a pointer sample and returns the visual feedback for it.
func (m *Mapper) Move(x, y float64) (Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case committed:
		return Feedback{}, ErrLocked
	case idle:
		return Feedback{}, ErrNoSession
	}
	m.last = m.cfg.Feedback(x-m.startX, y-m.startY)
	return m.last, nil
}

// Release ends the drag. Committing intents lock the mapper until Unlock;
// IntentNone snaps the card back and leaves the mapper idle.
func (m *Mapper) Release() (models.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case committed:
		return models.IntentNone, ErrLocked
	case idle:
		return models.IntentNone, ErrNoSession
	}

	intent := m.cfg.Classify(m.last.OffsetX, m.last.OffsetY)
	if intent.Commits() {
		m.phase = committed
	} else {
		m.phase = idle
	}
	m.last = Feedback{Sign: SignNone}
	return intent, nil
}

// Commit locks the mapper for a button-triggered intent.
func (m *Mapper) Commit(intent models.Intent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == committed {
		return ErrLocked
	}
	if !intent.Commits() {
		m.phase = idle
		return nil
	}
	m.phase = committed
	return nil
}

// Unlock makes the next card interactive.
func (m *Mapper) Unlock() {
	m.mu.Lock()
	m.phase = idle
	m.last = Feedback{Sign: SignNone}
	m.mu.Unlock()
}

// Cancel drops an unfinished drag without firing.
func (m *Mapper) Cancel() {
	m.mu.Lock()
	if m.phase == dragging {
		m.phase = idle
		m.last = Feedback{Sign: SignNone}
	}
	m.mu.Unlock()
}

func (m *Mapper) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase == committed
}

// Dragging reports whether a press is active, along with the latest feedback.
func (m *Mapper) Dragging() (Feedback, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.phase == dragging
}
