package trickle

import "time"

// Transcript records one completed exchange: the request that was sent and
// the text that came back. Transcripts are what the CLI persists between
// runs.
type Transcript struct {
	ID           string
	Model        string
	Instructions string
	Input        []Message
	OutputText   string
	Usage        Usage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
