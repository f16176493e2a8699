package whisper

import (
	"encoding/binary"
	"fmt"
	"io"
)

// wavAudio is decoded WAV content: 16-bit PCM converted to normalized
// float32 mono samples, the layout whisper.cpp inference expects.
type wavAudio struct {
	samples    []float32
	sampleRate int
}

// decodeWAV parses a RIFF/WAVE container holding 16-bit signed PCM and
// returns mono float32 samples. Multi-channel audio is down-mixed by
// averaging channels per frame. Chunks other than "fmt " and "data" are
// skipped.
func decodeWAV(r io.Reader) (*wavAudio, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		haveFmt       bool
	)

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("no data chunk found")
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := int(binary.LittleEndian.Uint32(chunkHeader[4:8]))

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("fmt chunk too small: %d bytes", chunkSize)
			}
			fmtData := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, fmtData); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			audioFormat := int(binary.LittleEndian.Uint16(fmtData[0:2]))
			if audioFormat != 1 {
				return nil, fmt.Errorf("unsupported audio format %d, want PCM (1)", audioFormat)
			}
			channels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(fmtData[14:16]))
			if bitsPerSample != 16 {
				return nil, fmt.Errorf("unsupported bit depth %d, want 16", bitsPerSample)
			}
			if channels < 1 {
				return nil, fmt.Errorf("invalid channel count %d", channels)
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			pcm := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return nil, fmt.Errorf("read data chunk: %w", err)
			}
			return &wavAudio{
				samples:    pcmToFloat32Mono(pcm, channels),
				sampleRate: sampleRate,
			}, nil

		default:
			// Skip unrelated chunks (LIST, fact, ...). Chunk data is padded
			// to an even byte count.
			skip := int64(chunkSize)
			if chunkSize%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("skip %q chunk: %w", chunkID, err)
			}
		}
	}
}

// pcmToFloat32 converts 16-bit signed little-endian PCM audio to float32
// samples normalized to the range [-1.0, 1.0]. Any trailing odd byte is
// ignored.
func pcmToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := range n {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(sample) / 32768.0
	}
	return samples
}

// pcmToFloat32Mono down-mixes multi-channel 16-bit PCM to mono float32 by
// averaging all channels per frame. If channels is 1 this is equivalent to
// pcmToFloat32.
func pcmToFloat32Mono(pcm []byte, channels int) []float32 {
	if channels <= 1 {
		return pcmToFloat32(pcm)
	}
	samplesPerChannel := len(pcm) / (2 * channels)
	mono := make([]float32, samplesPerChannel)
	for i := range samplesPerChannel {
		var sum float32
		for ch := range channels {
			idx := (i*channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(pcm[idx : idx+2]))
			sum += float32(sample) / 32768.0
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
