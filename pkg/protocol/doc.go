// Package protocol defines the binary wire format for transporting stream
// chunks to a remote sink and interaction events back from the client.
//
// Every message is a frame: a 4-byte header (type, flags, big-endian
// payload length) followed by the payload. Chunk frames carry a varint
// sequence id and the serialized HTML; the consumer reconstructs the
// document by concatenating payloads in sequence order. Priority travels
// as a flag pair and is a transport hint only - it never reorders chunks.
package protocol
