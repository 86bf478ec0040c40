package trickle

import "io"

// Collect drains a stream to completion and returns the accumulated output
// text. Per-event decode errors are skipped: frames that fail to decode
// cannot contribute text, but they do not abort the drain. A terminal
// transport error is returned alongside whatever text accumulated before it.
//
// The caller retains ownership of the stream and must still Close() it.
func Collect(s Stream) (string, error) {
	var acc TextAccumulator
	for {
		evt, err := s.Next()
		if err == io.EOF {
			return acc.Text(), nil
		}
		if err != nil {
			if IsDecodeError(err) {
				continue
			}
			return acc.Text(), err
		}
		acc.Apply(evt)
	}
}
