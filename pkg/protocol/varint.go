package protocol

// MaxVarintLen is the maximum number of bytes a varint can occupy.
// A uint64 requires at most 10 bytes in varint encoding.
const MaxVarintLen = 10

// AppendUvarint appends an unsigned integer in protobuf-style varint
// encoding: 7 bits of data per byte, MSB indicates continuation.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// Uvarint decodes an unsigned varint from buf.
// Returns (value, bytesRead). If bytesRead < 0, decoding failed:
//   - -1: buffer too short (incomplete varint)
//   - -2: varint overflow (more than 10 bytes)
func Uvarint(buf []byte) (uint64, int) {
	var v uint64
	var shift uint

	for i, b := range buf {
		if i >= MaxVarintLen {
			return 0, -2 // Overflow
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, -1 // Incomplete
}

// AppendSvarint appends a signed integer using ZigZag encoding.
// ZigZag maps signed integers to unsigned: 0->0, -1->1, 1->2, -2->3, etc.
func AppendSvarint(buf []byte, v int64) []byte {
	return AppendUvarint(buf, uint64((v<<1)^(v>>63)))
}

// Svarint decodes a signed varint using ZigZag decoding.
// Returns (value, bytesRead). Negative bytesRead indicates error (see
// Uvarint).
func Svarint(buf []byte) (int64, int) {
	uv, n := Uvarint(buf)
	if n < 0 {
		return 0, n
	}
	v := int64(uv >> 1)
	if uv&1 != 0 {
		v = ^v
	}
	return v, n
}

// AppendString appends a length-prefixed UTF-8 string.
func AppendString(buf []byte, s string) []byte {
	buf = AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

// String decodes a length-prefixed string from buf.
// Returns (value, bytesRead); bytesRead < 0 on a short or malformed buffer.
func String(buf []byte) (string, int) {
	length, n := Uvarint(buf)
	if n < 0 {
		return "", n
	}
	if uint64(len(buf)-n) < length {
		return "", -1
	}
	return string(buf[n : n+int(length)]), n + int(length)
}
