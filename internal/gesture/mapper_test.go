package gesture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"CountrySwipe/internal/domain/models"
)

func TestClassifyThresholds(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		x, y float64
		want models.Intent
	}{
		{150, 0, models.IntentLong},
		{-150, 0, models.IntentShort},
		{0, -150, models.IntentSkip},
		{50, -50, models.IntentNone},
		{100, 0, models.IntentNone},
		{-100, 0, models.IntentNone},
		{0, -100, models.IntentNone},
		{0, 300, models.IntentNone},
		// horizontal wins when both exceed
		{120, -400, models.IntentLong},
		{-120, -400, models.IntentShort},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, cfg.Classify(tc.x, tc.y), "x=%v y=%v", tc.x, tc.y)
	}
}

func TestFeedback(t *testing.T) {
	cfg := DefaultConfig()

	fb := cfg.Feedback(75, 10)
	require.Equal(t, SignRight, fb.Sign)
	require.InDelta(t, 3.75, fb.Rotation, 1e-9)
	require.InDelta(t, 0.5, fb.Intensity, 1e-9)

	fb = cfg.Feedback(-300, 0)
	require.Equal(t, SignLeft, fb.Sign)
	require.Equal(t, 1.0, fb.Intensity)

	fb = cfg.Feedback(10, -90)
	require.Equal(t, SignUp, fb.Sign)
	require.InDelta(t, 0.6, fb.Intensity, 1e-9)

	fb = cfg.Feedback(0, 0)
	require.Equal(t, SignNone, fb.Sign)
	require.Zero(t, fb.Intensity)
}

func TestMapperFiresOncePerRelease(t *testing.T) {
	m := NewMapper(DefaultConfig())

	require.NoError(t, m.Press(10, 10))
	_, err := m.Move(60, 10)
	require.NoError(t, err)
	_, err = m.Move(170, 20)
	require.NoError(t, err)

	intent, err := m.Release()
	require.NoError(t, err)
	require.Equal(t, models.IntentLong, intent)
	require.True(t, m.Locked())

	_, err = m.Release()
	require.ErrorIs(t, err, ErrLocked)
	require.ErrorIs(t, m.Press(0, 0), ErrLocked)

	m.Unlock()
	require.False(t, m.Locked())
	require.NoError(t, m.Press(0, 0))
}

func TestMapperSnapBack(t *testing.T) {
	m := NewMapper(DefaultConfig())

	require.NoError(t, m.Press(0, 0))
	_, err := m.Move(50, -50)
	require.NoError(t, err)

	intent, err := m.Release()
	require.NoError(t, err)
	require.Equal(t, models.IntentNone, intent)
	require.False(t, m.Locked())

	_, dragging := m.Dragging()
	require.False(t, dragging)
}

func TestMapperRequiresPress(t *testing.T) {
	m := NewMapper(DefaultConfig())

	_, err := m.Move(1, 1)
	require.ErrorIs(t, err, ErrNoSession)
	_, err = m.Release()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestMapperCommitButton(t *testing.T) {
	m := NewMapper(DefaultConfig())

	require.NoError(t, m.Commit(models.IntentSkip))
	require.True(t, m.Locked())
	require.ErrorIs(t, m.Commit(models.IntentLong), ErrLocked)
}

func TestTimedTransition(t *testing.T) {
	start := time.Now()
	require.NoError(t, TimedTransition{Duration: 20 * time.Millisecond}.Play(context.Background(), models.IntentLong))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := TimedTransition{Duration: time.Hour}.Play(ctx, models.IntentLong)
	require.ErrorIs(t, err, context.Canceled)
}
