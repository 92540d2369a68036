package protocol

import (
	"github.com/glint-ui/glint/pkg/replay"
)

// EncodeEvent packs an interaction event into a frame.
//
// Payload layout:
//
//	type (1 byte) | mods (1 byte) | x (svarint) | y (svarint)
//	| selector (string) | value (string) | key (string)
func EncodeEvent(ev replay.Event) (*Frame, error) {
	payload := make([]byte, 0, 16+len(ev.Selector)+len(ev.Value)+len(ev.Key))
	payload = append(payload, byte(ev.Type), byte(ev.Mods))
	payload = AppendSvarint(payload, int64(ev.X))
	payload = AppendSvarint(payload, int64(ev.Y))
	payload = AppendString(payload, ev.Selector)
	payload = AppendString(payload, ev.Value)
	payload = AppendString(payload, ev.Key)

	if len(payload) > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	return &Frame{Type: FrameEvent, Payload: payload}, nil
}

// DecodeEvent unpacks an event frame.
func DecodeEvent(f *Frame) (replay.Event, error) {
	if f.Type != FrameEvent {
		return replay.Event{}, ErrInvalidFrameType
	}
	buf := f.Payload
	if len(buf) < 2 {
		return replay.Event{}, ErrShortPayload
	}

	ev := replay.Event{
		Type: replay.EventType(buf[0]),
		Mods: replay.Modifiers(buf[1]),
	}
	buf = buf[2:]

	x, n := Svarint(buf)
	if n < 0 {
		return replay.Event{}, ErrShortPayload
	}
	buf = buf[n:]
	y, n := Svarint(buf)
	if n < 0 {
		return replay.Event{}, ErrShortPayload
	}
	buf = buf[n:]
	ev.X, ev.Y = int(x), int(y)

	for _, field := range []*string{&ev.Selector, &ev.Value, &ev.Key} {
		s, n := String(buf)
		if n < 0 {
			return replay.Event{}, ErrShortPayload
		}
		*field = s
		buf = buf[n:]
	}

	return ev, nil
}
