package display

import "sync"

// Frame is one pair of lines sent to a display.
type Frame struct {
	Line1 string
	Line2 string
}

// Recorder remembers every call. Used by tests and the emulator.
type Recorder struct {
	mu        sync.Mutex
	frames    []Frame
	clears    int
	backlight []bool
}

func (r *Recorder) Show(line1, line2 string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, Frame{Line1: line1, Line2: line2})
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
}

func (r *Recorder) SetBacklight(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backlight = append(r.backlight, on)
}

// Frames returns a copy of all frames shown so far.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Last returns the most recent frame, if any.
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Clears returns how many times Clear was called.
func (r *Recorder) Clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

// Backlight returns every backlight state set, in order.
func (r *Recorder) Backlight() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.backlight...)
}
