// Package sse reassembles server-sent event frames from an arbitrarily
// chunked byte stream.
//
// The transport delivers bytes with no alignment to frame or line
// boundaries: a frame delimiter can arrive split across two reads, and a
// multi-byte character can straddle a chunk boundary. The Splitter therefore
// buffers at the byte level and converts to text only once a complete frame
// is present; a frame boundary is trustworthy only when both delimiter
// bytes are in the buffer.
//
// Payload extraction is separate from framing: Payload pulls the data-bearing
// lines out of a complete frame and filters the protocol's non-events (empty
// frames, keep-alive comments, the [DONE] sentinel).
package sse

// Sentinel is the literal end-of-data payload. It terminates data delivery
// without itself becoming an event: Payload reports it as absent.
const Sentinel = "[DONE]"
