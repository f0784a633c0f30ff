package input

import (
	"fmt"
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

type recorder struct {
	calls []string
}

func (r *recorder) OnClick(x, y float32) { r.calls = append(r.calls, fmt.Sprintf("click %v,%v", x, y)) }
func (r *recorder) OnDrag(dx, dy float32) { r.calls = append(r.calls, fmt.Sprintf("drag %v,%v", dx, dy)) }
func (r *recorder) OnWheel(s float32) { r.calls = append(r.calls, fmt.Sprintf("wheel %v", s)) }
func (r *recorder) OnResize(w, h int) { r.calls = append(r.calls, fmt.Sprintf("resize %dx%d", w, h)) }

func down(x, y int) Event { return Event{Type: EventMouseDown, Button: sdl.BUTTON_LEFT, MouseX: x, MouseY: y} }
func up(x, y int) Event   { return Event{Type: EventMouseUp, Button: sdl.BUTTON_LEFT, MouseX: x, MouseY: y} }
func move(x, y int) Event { return Event{Type: EventMouseMove, MouseX: x, MouseY: y} }

func TestGestures(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   []string
	}{
		{
			name:   "click in place",
			events: []Event{down(100, 50), up(100, 50)},
			want:   []string{"click 100,50"},
		},
		{
			name:   "small jitter still clicks",
			events: []Event{down(100, 50), move(102, 51), up(103, 52)},
			want:   []string{"drag 2,1", "click 103,52"},
		},
		{
			name:   "drag is not a click",
			events: []Event{down(100, 50), move(110, 50), move(130, 40), up(130, 40)},
			want:   []string{"drag 10,0", "drag 20,-10"},
		},
		{
			name:   "drag back to start is not a click",
			events: []Event{down(100, 50), move(120, 50), move(100, 50), up(100, 50)},
			want:   []string{"drag 20,0", "drag -20,0"},
		},
		{
			name:   "hover without press",
			events: []Event{move(10, 10), move(20, 20), up(20, 20)},
			want:   nil,
		},
		{
			name: "right button ignored",
			events: []Event{
				{Type: EventMouseDown, Button: sdl.BUTTON_RIGHT, MouseX: 5, MouseY: 5},
				{Type: EventMouseUp, Button: sdl.BUTTON_RIGHT, MouseX: 5, MouseY: 5},
			},
			want: nil,
		},
		{
			name:   "wheel and resize pass through",
			events: []Event{{Type: EventMouseWheel, Wheel: -1}, {Type: EventWindowResize, Width: 640, Height: 480}},
			want:   []string{"wheel -1", "resize 640x480"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			g := NewGestures(rec)
			for _, e := range tt.events {
				g.Feed(e)
			}
			if fmt.Sprint(rec.calls) != fmt.Sprint(tt.want) {
				t.Errorf("calls = %v, want %v", rec.calls, tt.want)
			}
		})
	}
}

func TestSetListenerResetsPress(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	g := NewGestures(first)
	g.Feed(down(10, 10))
	g.SetListener(second)
	g.Feed(up(10, 10))
	if len(first.calls) != 0 || len(second.calls) != 0 {
		t.Errorf("release after listener swap should be dropped: %v / %v", first.calls, second.calls)
	}
}

func TestNilListenerDropsEvents(t *testing.T) {
	g := NewGestures(nil)
	g.Feed(down(1, 1))
	g.Feed(up(1, 1))
}

func TestTranslateWheel(t *testing.T) {
	tests := []struct {
		y         int32
		direction uint32
		want      float32
		ok        bool
	}{
		{1, sdl.MOUSEWHEEL_NORMAL, 1, true},
		{-2, sdl.MOUSEWHEEL_NORMAL, -2, true},
		{1, sdl.MOUSEWHEEL_FLIPPED, -1, true},
		{0, sdl.MOUSEWHEEL_NORMAL, 0, false},
	}
	for _, tt := range tests {
		e, ok := translate(&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: tt.y, Direction: tt.direction})
		if ok != tt.ok || e.Wheel != tt.want {
			t.Errorf("wheel y=%d dir=%d: got %v/%v, want %v/%v", tt.y, tt.direction, e.Wheel, ok, tt.want, tt.ok)
		}
	}
}

func TestTranslateResize(t *testing.T) {
	e, ok := translate(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 1024, Data2: 768})
	if !ok || e.Type != EventWindowResize || e.Width != 1024 || e.Height != 768 {
		t.Errorf("got %+v, %v", e, ok)
	}
	if _, ok := translate(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MOVED}); ok {
		t.Error("moves should be ignored")
	}
}

func TestIsKeyPressed(t *testing.T) {
	in := &Input{events: []Event{
		{Type: EventKeyUp, Key: sdl.SCANCODE_ESCAPE},
		{Type: EventKeyDown, Key: sdl.SCANCODE_F12},
	}}
	if !in.IsKeyPressed(sdl.SCANCODE_F12) {
		t.Error("F12 went down and should be pressed")
	}
	if in.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		t.Error("a key release is not a press")
	}
	if (&Input{}).IsKeyPressed(sdl.SCANCODE_F12) {
		t.Error("no events means no presses")
	}
}
