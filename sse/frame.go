package sse

import "strings"

// dataPrefix marks the payload-bearing lines of a frame.
const dataPrefix = "data:"

// Payload extracts the logical data payload from one complete frame.
//
// Only lines carrying the data prefix contribute; the prefix and surrounding
// whitespace are stripped from each and multi-line payloads are rejoined
// with a single newline. Comment lines (":keep-alive"), field lines like
// "event:" or "id:", and anything else are ignored here; the event kind
// lives inside the JSON payload for this protocol.
//
// Reports false for the two reserved non-events: a frame with no data lines
// (or an empty joined payload) and the Sentinel.
func Payload(frame string) (string, bool) {
	var parts []string
	for _, line := range strings.Split(frame, "\n") {
		rest, ok := strings.CutPrefix(line, dataPrefix)
		if !ok {
			continue
		}
		parts = append(parts, strings.TrimSpace(rest))
	}
	if len(parts) == 0 {
		return "", false
	}
	payload := strings.Join(parts, "\n")
	if payload == "" || payload == Sentinel {
		return "", false
	}
	return payload, true
}
