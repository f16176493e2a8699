// Package chunk splits a transcript's message sequence into bounded-size
// pieces so each fits an LLM context window.
//
// Chunks partition the sequence exactly: contiguous, in order, no overlap,
// no gap. A transcript of 120 messages with size 50 yields chunks of
// 50, 50 and 20.
package chunk

import (
	"fmt"

	"github.com/MrWong99/reqsift/internal/transcript"
)

// DefaultSize is the default maximum number of messages per chunk.
const DefaultSize = 50

// Chunk is a contiguous, ordered sub-sequence of the transcript.
type Chunk struct {
	// Index is the chunk's zero-based position in the plan.
	Index int

	// Messages holds the chunk's messages, sharing backing storage with the
	// planned sequence.
	Messages []transcript.Message
}

// Plan partitions msgs into chunks of at most size messages each. All chunks
// except possibly the last hold exactly size messages. An empty input yields
// an empty plan; size must be positive.
func Plan(msgs []transcript.Message, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk: size must be positive, got %d", size)
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	n := (len(msgs) + size - 1) / size
	chunks := make([]Chunk, 0, n)
	for start := 0; start < len(msgs); start += size {
		end := start + size
		if end > len(msgs) {
			end = len(msgs)
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Messages: msgs[start:end]})
	}
	return chunks, nil
}
