package domain

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDelivery_Chunks(t *testing.T) {
	payload := []byte("MSG FROM alice IS hello\r\n")

	tests := []struct {
		name     string
		delivery Delivery
		chunks   int
	}{
		{name: "Atomic", delivery: Atomic(), chunks: 1},
		{name: "Five bytes", delivery: Segmented(5, time.Second), chunks: 5},
		{name: "Chunk larger than payload", delivery: Segmented(100, time.Second), chunks: 1},
		{name: "One byte", delivery: Segmented(1, 0), chunks: len(payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			chunks := tt.delivery.Chunks(payload)
			req.Len(chunks, tt.chunks)
			req.Equal(payload, bytes.Join(chunks, nil))
		})
	}
}

func TestDelivery_Negative_Chunk_Is_Atomic(t *testing.T) {
	req := require.New(t)
	req.False(Segmented(-1, time.Second).IsSegmented())
	req.True(Segmented(5, 0).IsSegmented())
}

func TestReport_Delivered(t *testing.T) {
	req := require.New(t)
	report := Report{Recipients: 3, Failures: []DeliveryFailure{{}}}
	req.Equal(2, report.Delivered())
}
