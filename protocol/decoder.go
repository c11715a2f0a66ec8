package protocol

import (
	"bufio"
	"bytes"
	"io"
	"math"
)

const initialBufferSize = 4096

var delimiter = []byte(Delimiter)

// ScanFrames is a bufio.SplitFunc returning every CR LF terminated segment,
// delimiter included. Since the scanner keeps unconsumed bytes between reads,
// a delimiter split across two reads is found once its second half arrives.
// A trailing segment without delimiter is dropped at EOF.
func ScanFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.Index(data, delimiter); i >= 0 {
		end := i + len(delimiter)
		return end, data[:end], nil
	}
	if atEOF {
		return len(data), nil, nil
	}
	return 0, nil, nil
}

// NewScanner returns a scanner yielding protocol frames read from r.
// A maxFrameSize of zero or less leaves frames unbounded: a peer that never
// sends a delimiter makes the buffer grow without limit.
func NewScanner(r io.Reader, maxFrameSize int) *bufio.Scanner {
	if maxFrameSize <= 0 {
		maxFrameSize = math.MaxInt
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(initialBufferSize, maxFrameSize)), maxFrameSize)
	scanner.Split(ScanFrames)
	return scanner
}
