package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectFromPoints(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want Rect
	}{
		{
			name: "down-right drag",
			a:    Point{X: 10, Y: 20},
			b:    Point{X: 110, Y: 70},
			want: Rect{X: 10, Y: 20, Width: 100, Height: 50},
		},
		{
			name: "up-left drag",
			a:    Point{X: 110, Y: 70},
			b:    Point{X: 10, Y: 20},
			want: Rect{X: 10, Y: 20, Width: 100, Height: 50},
		},
		{
			name: "up-right drag",
			a:    Point{X: 10, Y: 70},
			b:    Point{X: 110, Y: 20},
			want: Rect{X: 10, Y: 20, Width: 100, Height: 50},
		},
		{
			name: "no movement",
			a:    Point{X: 5, Y: 5},
			b:    Point{X: 5, Y: 5},
			want: Rect{X: 5, Y: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RectFromPoints(tt.a, tt.b))
		})
	}
}

func TestTrackerDrag(t *testing.T) {
	tracker := NewTracker()

	_, ok := tracker.Selection()
	assert.False(t, ok, "no selection before the first drag")

	tracker.PointerDown(Point{X: 200, Y: 150})
	assert.True(t, tracker.Selecting())

	rect, ok := tracker.PointerMove(Point{X: 100, Y: 300})
	require.True(t, ok)
	assert.Equal(t, Rect{X: 100, Y: 150, Width: 100, Height: 150}, rect)

	_, ok = tracker.Selection()
	assert.False(t, ok, "selection is not complete while dragging")

	tracker.PointerUp()
	assert.Equal(t, Idle, tracker.State())

	rect, ok = tracker.Selection()
	require.True(t, ok)
	assert.Equal(t, Rect{X: 100, Y: 150, Width: 100, Height: 150}, rect)
}

func TestTrackerIgnoresMoveWhenIdle(t *testing.T) {
	tracker := NewTracker()

	_, ok := tracker.PointerMove(Point{X: 10, Y: 10})
	assert.False(t, ok)

	tracker.PointerUp()
	_, ok = tracker.Selection()
	assert.False(t, ok)
}

func TestTrackerZeroMovement(t *testing.T) {
	tracker := NewTracker()
	tracker.PointerDown(Point{X: 40, Y: 60})
	tracker.PointerUp()

	rect, ok := tracker.Selection()
	require.True(t, ok)
	assert.True(t, rect.Empty())
	assert.Equal(t, Rect{X: 40, Y: 60}, rect)
}

func TestTrackerLeaveEndsDrag(t *testing.T) {
	tracker := NewTracker()
	tracker.PointerDown(Point{X: 0, Y: 0})
	tracker.PointerMove(Point{X: 50, Y: 50})
	tracker.PointerLeave()

	assert.False(t, tracker.Selecting())
	rect, ok := tracker.Selection()
	require.True(t, ok)
	assert.Equal(t, Rect{Width: 50, Height: 50}, rect)

	_, ok = tracker.PointerMove(Point{X: 80, Y: 80})
	assert.False(t, ok, "moves after leave are ignored")
}

func TestTrackerNewDragClearsSelection(t *testing.T) {
	tracker := NewTracker()
	tracker.PointerDown(Point{X: 0, Y: 0})
	tracker.PointerMove(Point{X: 50, Y: 50})
	tracker.PointerUp()

	tracker.PointerDown(Point{X: 10, Y: 10})
	_, ok := tracker.Selection()
	assert.False(t, ok)
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker()
	tracker.PointerDown(Point{X: 0, Y: 0})
	tracker.PointerMove(Point{X: 50, Y: 50})
	tracker.PointerUp()

	tracker.Reset()
	_, ok := tracker.Selection()
	assert.False(t, ok)
	assert.Equal(t, "idle", tracker.State().String())
}

func TestPointSub(t *testing.T) {
	client := Point{X: 350, Y: 420}
	origin := Point{X: 300, Y: 400}
	assert.Equal(t, Point{X: 50, Y: 20}, client.Sub(origin))
}
