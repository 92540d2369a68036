package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/glint-ui/glint/pkg/render"
	"github.com/glint-ui/glint/pkg/replay"
)

func TestFrame_EncodeDecode(t *testing.T) {
	in := &Frame{
		Type:    FrameChunk,
		Flags:   FlagFinal | FlagPriorityLow,
		Payload: []byte("<div>hello</div>"),
	}

	data, err := in.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) != FrameHeaderSize+len(in.Payload) {
		t.Fatalf("encoded length = %d", len(data))
	}

	out, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if out.Type != in.Type || out.Flags != in.Flags || !bytes.Equal(out.Payload, in.Payload) {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestFrame_PayloadTooLarge(t *testing.T) {
	f := &Frame{Type: FrameChunk, Payload: make([]byte, MaxPayloadSize+1)}
	if _, err := f.Encode(); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}

func TestDecodeFrame_Errors(t *testing.T) {
	if _, err := DecodeFrame([]byte{0x01, 0x00}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("short header err = %v", err)
	}
	if _, err := DecodeFrame([]byte{0x00, 0x00, 0x00, 0x00}); !errors.Is(err, ErrInvalidFrameType) {
		t.Fatalf("type 0 err = %v", err)
	}
	if _, err := DecodeFrame([]byte{0x09, 0x00, 0x00, 0x00}); !errors.Is(err, ErrInvalidFrameType) {
		t.Fatalf("type 9 err = %v", err)
	}
	// Header declares 4 payload bytes, only 2 present.
	if _, err := DecodeFrame([]byte{0x01, 0x00, 0x00, 0x04, 0xAA, 0xBB}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("short payload err = %v", err)
	}
}

func TestReadFrame_Stream(t *testing.T) {
	f1, _ := (&Frame{Type: FrameChunk, Payload: []byte("one")}).Encode()
	f2, _ := (&Frame{Type: FrameControl, Payload: []byte("replay")}).Encode()
	r := bytes.NewReader(append(f1, f2...))

	first, err := ReadFrame(r)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if first.Type != FrameChunk || string(first.Payload) != "one" {
		t.Fatalf("first frame = %+v", first)
	}

	second, err := ReadFrame(r)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if second.Type != FrameControl || string(second.Payload) != "replay" {
		t.Fatalf("second frame = %+v", second)
	}

	if _, err := ReadFrame(r); !errors.Is(err, io.EOF) {
		t.Fatalf("exhausted reader err = %v", err)
	}
}

func TestChunk_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		chunk render.Chunk
	}{
		{"normal", render.Chunk{Seq: 1, Payload: "<p>x</p>", Priority: render.PriorityNormal}},
		{"high priority", render.Chunk{Seq: 300, Payload: "head", Priority: render.PriorityHigh}},
		{"final low", render.Chunk{Seq: 9000, Final: true, Priority: render.PriorityLow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeChunk(tt.chunk)
			if err != nil {
				t.Fatalf("EncodeChunk: %v", err)
			}
			got, err := DecodeChunk(frame)
			if err != nil {
				t.Fatalf("DecodeChunk: %v", err)
			}
			if got != tt.chunk {
				t.Fatalf("round trip = %+v, want %+v", got, tt.chunk)
			}
		})
	}
}

func TestChunk_TooLarge(t *testing.T) {
	c := render.Chunk{Seq: 1, Payload: strings.Repeat("x", MaxPayloadSize)}
	if _, err := EncodeChunk(c); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}

func TestDecodeChunk_WrongType(t *testing.T) {
	if _, err := DecodeChunk(&Frame{Type: FrameEvent}); !errors.Is(err, ErrInvalidFrameType) {
		t.Fatalf("err = %v, want ErrInvalidFrameType", err)
	}
}

func TestEvent_RoundTrip(t *testing.T) {
	in := replay.Event{
		Type:     replay.EventKeyDown,
		Selector: "#editor > textarea:nth-of-type(1)",
		Value:    "draft text",
		Key:      "Enter",
		X:        -4,
		Y:        812,
		Mods:     replay.ModCtrl | replay.ModShift,
	}

	frame, err := EncodeEvent(in)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	if frame.Type != FrameEvent {
		t.Fatalf("frame type = %v, want event", frame.Type)
	}

	got, err := DecodeEvent(frame)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if got != in {
		t.Fatalf("round trip = %+v, want %+v", got, in)
	}
}

func TestDecodeEvent_Malformed(t *testing.T) {
	if _, err := DecodeEvent(&Frame{Type: FrameChunk}); !errors.Is(err, ErrInvalidFrameType) {
		t.Fatalf("wrong type err = %v", err)
	}
	if _, err := DecodeEvent(&Frame{Type: FrameEvent, Payload: []byte{0x01}}); !errors.Is(err, ErrShortPayload) {
		t.Fatalf("short payload err = %v", err)
	}

	// Truncated selector string.
	frame, err := EncodeEvent(replay.Event{Type: replay.EventClick, Selector: "#long-selector"})
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	frame.Payload = frame.Payload[:len(frame.Payload)-10]
	if _, err := DecodeEvent(frame); !errors.Is(err, ErrShortPayload) {
		t.Fatalf("truncated err = %v", err)
	}
}
