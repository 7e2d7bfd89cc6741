package present

// EventKind classifies host notifications.
type EventKind int

const (
	// WindowReady fires after a window's swapchain is first configured.
	WindowReady EventKind = iota

	// WindowResized fires after a resize has been applied to the
	// swapchain (not on every OS resize message).
	WindowResized

	// WindowLost fires when a window's surface became unrecoverable
	// and the window was unregistered. Err carries the cause.
	WindowLost
)

func (k EventKind) String() string {
	switch k {
	case WindowReady:
		return "ready"
	case WindowResized:
		return "resized"
	case WindowLost:
		return "lost"
	}
	return "unknown"
}

// Event is a window lifecycle notification delivered to the host.
type Event struct {
	Kind   EventKind
	Window WindowID
	Extent Extent
	Err    error
}

// eventSink delivers events to the host without ever blocking the frame
// driver. On a full channel the oldest event is dropped and a warning
// logged; the newest event always gets in.
type eventSink struct {
	ch chan Event
}

func newEventSink(buffer int) *eventSink {
	return &eventSink{ch: make(chan Event, buffer)}
}

func (s *eventSink) post(ev Event) {
	for {
		select {
		case s.ch <- ev:
			return
		default:
		}
		select {
		case dropped := <-s.ch:
			Logger().Warn("present: event buffer full, dropping oldest",
				"dropped", dropped.Kind.String(), "window", uint64(dropped.Window))
		default:
		}
	}
}

// resizeMsg is one queued OS resize notification. The queue is drained
// at tick start; per-window coalescing happens in the swapchain manager.
type resizeMsg struct {
	window WindowID
	extent Extent
}
