package protocol

import (
	"github.com/glint-ui/glint/pkg/render"
)

// EncodeChunk packs a stream chunk into a frame: varint sequence id
// followed by the payload bytes. Priority and finality travel as flags.
func EncodeChunk(c render.Chunk) (*Frame, error) {
	payload := make([]byte, 0, MaxVarintLen+len(c.Payload))
	payload = AppendUvarint(payload, c.Seq)
	payload = append(payload, c.Payload...)

	if len(payload) > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}

	var flags FrameFlags
	if c.Final {
		flags |= FlagFinal
	}
	switch c.Priority {
	case render.PriorityHigh:
		flags |= FlagPriorityHigh
	case render.PriorityLow:
		flags |= FlagPriorityLow
	}

	return &Frame{Type: FrameChunk, Flags: flags, Payload: payload}, nil
}

// DecodeChunk unpacks a chunk frame.
func DecodeChunk(f *Frame) (render.Chunk, error) {
	if f.Type != FrameChunk {
		return render.Chunk{}, ErrInvalidFrameType
	}

	seq, n := Uvarint(f.Payload)
	if n < 0 {
		return render.Chunk{}, ErrShortPayload
	}

	priority := render.PriorityNormal
	if f.Flags.Has(FlagPriorityHigh) {
		priority = render.PriorityHigh
	} else if f.Flags.Has(FlagPriorityLow) {
		priority = render.PriorityLow
	}

	return render.Chunk{
		Seq:      seq,
		Payload:  string(f.Payload[n:]),
		Final:    f.Flags.Has(FlagFinal),
		Priority: priority,
	}, nil
}
