package replay

import "time"

// EventType identifies the type of recorded user-interaction event.
type EventType uint8

const (
	// Mouse events (0x01-0x03)
	EventClick     EventType = 0x01
	EventDblClick  EventType = 0x02
	EventMouseDown EventType = 0x03

	// Form events (0x10-0x14)
	EventInput  EventType = 0x10
	EventChange EventType = 0x11
	EventSubmit EventType = 0x12
	EventFocus  EventType = 0x13
	EventBlur   EventType = 0x14

	// Keyboard events (0x20-0x21)
	EventKeyDown EventType = 0x20
	EventKeyUp   EventType = 0x21
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	switch et {
	case EventClick:
		return "Click"
	case EventDblClick:
		return "DblClick"
	case EventMouseDown:
		return "MouseDown"
	case EventInput:
		return "Input"
	case EventChange:
		return "Change"
	case EventSubmit:
		return "Submit"
	case EventFocus:
		return "Focus"
	case EventBlur:
		return "Blur"
	case EventKeyDown:
		return "KeyDown"
	case EventKeyUp:
		return "KeyUp"
	default:
		return "Unknown"
	}
}

// Modifiers represents keyboard/mouse modifier keys held during the event.
type Modifiers uint8

const (
	ModCtrl  Modifiers = 0x01
	ModShift Modifiers = 0x02
	ModAlt   Modifiers = 0x04
	ModMeta  Modifiers = 0x08
)

// Has returns true if the modifier set contains the specified modifier.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod != 0
}

// Event captures everything needed to reconstruct an equivalent user
// interaction: the event type, a stable selector for the target element,
// and event-specific data.
type Event struct {
	// Type is the interaction kind.
	Type EventType

	// Selector identifies the target element (id if present, else a
	// tag+class+positional path). See SelectorFor.
	Selector string

	// Value carries the input value for form events.
	Value string

	// Key carries the key name for keyboard events.
	Key string

	// X, Y carry pointer coordinates for mouse events.
	X, Y int

	// Mods are the modifier keys held during the event.
	Mods Modifiers

	// Recorded is when the event was captured.
	Recorded time.Time
}
