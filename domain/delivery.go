package domain

import (
	"time"

	"github.com/google/uuid"
)

// Delivery describes how one encoded line is written to a recipient.
// A ChunkSize of zero or less writes the line in a single operation,
// otherwise the line is split in ChunkSize bytes with Delay between chunks.
type Delivery struct {
	ChunkSize int
	Delay     time.Duration
}

func Atomic() Delivery {
	return Delivery{}
}

func Segmented(chunkSize int, delay time.Duration) Delivery {
	return Delivery{ChunkSize: chunkSize, Delay: delay}
}

func (d Delivery) IsSegmented() bool {
	return d.ChunkSize > 0
}

// Chunks splits payload the way it travels on the wire.
func (d Delivery) Chunks(payload []byte) [][]byte {
	if !d.IsSegmented() || len(payload) <= d.ChunkSize {
		return [][]byte{payload}
	}
	chunks := make([][]byte, 0, (len(payload)+d.ChunkSize-1)/d.ChunkSize)
	for start := 0; start < len(payload); start += d.ChunkSize {
		end := min(start+d.ChunkSize, len(payload))
		chunks = append(chunks, payload[start:end])
	}
	return chunks
}

type DeliveryFailure struct {
	SessionID uuid.UUID
	Err       error
}

// Report is the outcome of one fan-out. Failures never abort the fan-out,
// they are only collected here.
type Report struct {
	Recipients int
	Failures   []DeliveryFailure
}

func (r Report) Delivered() int {
	return r.Recipients - len(r.Failures)
}
