package tunebridge

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// WaveHeader is the subset of a canonical RIFF/WAVE "fmt " chunk this
// bridge needs: channel count, sample rate, byte rate, block align, and bit
// depth. The audio-format field is read but not kept, so ReadWave decodes
// the chunk field by field rather than into this struct in one read.
type WaveHeader struct {
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// WaveFile is a decoded WAV: its format header plus samples normalized to
// float32 in [-1, 1].
type WaveFile struct {
	Header  WaveHeader
	Samples []float32
}

// ReadWave parses a canonical RIFF/WAVE stream: a "RIFF....WAVE" container
// holding a "fmt " chunk followed (eventually) by a "data" chunk. Any
// chunks other than fmt/data are skipped by their declared size.
func ReadWave(r io.Reader) (*WaveFile, error) {
	var riffID [4]byte
	var riffSize uint32
	var waveID [4]byte
	if err := binary.Read(r, binary.LittleEndian, &riffID); err != nil {
		return nil, &BackendIOError{Message: "failed to read RIFF header: " + err.Error()}
	}
	if string(riffID[:]) != "RIFF" {
		return nil, &BackendIOError{Message: "not a RIFF file"}
	}
	if err := binary.Read(r, binary.LittleEndian, &riffSize); err != nil {
		return nil, &BackendIOError{Message: "failed to read RIFF size: " + err.Error()}
	}
	if err := binary.Read(r, binary.LittleEndian, &waveID); err != nil {
		return nil, &BackendIOError{Message: "failed to read WAVE id: " + err.Error()}
	}
	if string(waveID[:]) != "WAVE" {
		return nil, &BackendIOError{Message: "not a WAVE file"}
	}

	var wav WaveFile
	var haveFormat bool

	for {
		var chunkID [4]byte
		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkID); err != nil {
			if err == io.EOF {
				break
			}
			return nil, &BackendIOError{Message: "failed to read chunk id: " + err.Error()}
		}
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return nil, &BackendIOError{Message: "failed to read chunk size: " + err.Error()}
		}

		switch string(chunkID[:]) {
		case "fmt ":
			var audioFormat uint16
			if err := binary.Read(r, binary.LittleEndian, &audioFormat); err != nil {
				return nil, &BackendIOError{Message: "failed to read fmt chunk: " + err.Error()}
			}
			if err := binary.Read(r, binary.LittleEndian, &wav.Header.NumChannels); err != nil {
				return nil, &BackendIOError{Message: "failed to read fmt chunk: " + err.Error()}
			}
			if err := binary.Read(r, binary.LittleEndian, &wav.Header.SampleRate); err != nil {
				return nil, &BackendIOError{Message: "failed to read fmt chunk: " + err.Error()}
			}
			if err := binary.Read(r, binary.LittleEndian, &wav.Header.ByteRate); err != nil {
				return nil, &BackendIOError{Message: "failed to read fmt chunk: " + err.Error()}
			}
			if err := binary.Read(r, binary.LittleEndian, &wav.Header.BlockAlign); err != nil {
				return nil, &BackendIOError{Message: "failed to read fmt chunk: " + err.Error()}
			}
			if err := binary.Read(r, binary.LittleEndian, &wav.Header.BitsPerSample); err != nil {
				return nil, &BackendIOError{Message: "failed to read fmt chunk: " + err.Error()}
			}
			remaining := int64(chunkSize) - 16
			if remaining > 0 {
				if _, err := io.CopyN(io.Discard, r, remaining); err != nil {
					return nil, &BackendIOError{Message: "failed to skip fmt extension: " + err.Error()}
				}
			}
			haveFormat = true

		case "data":
			if !haveFormat {
				return nil, &BackendIOError{Message: "data chunk before fmt chunk"}
			}
			raw := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, &BackendIOError{Message: "failed to read data chunk: " + err.Error()}
			}
			samples, err := decodeSamples(raw, wav.Header.BitsPerSample)
			if err != nil {
				return nil, err
			}
			wav.Samples = samples
			if chunkSize%2 == 1 {
				io.CopyN(io.Discard, r, 1)
			}

		default:
			if _, err := io.CopyN(io.Discard, r, int64(chunkSize)); err != nil {
				return nil, &BackendIOError{Message: "failed to skip chunk " + string(chunkID[:]) + ": " + err.Error()}
			}
			if chunkSize%2 == 1 {
				io.CopyN(io.Discard, r, 1)
			}
		}
	}

	if !haveFormat {
		return nil, &BackendIOError{Message: "missing fmt chunk"}
	}
	return &wav, nil
}

// WriteWave writes mono samples as a canonical 32-bit IEEE-float RIFF/WAVE
// stream at the given sample rate.
func WriteWave(w io.Writer, samples []float32, sampleRate int) error {
	const bitsPerSample = 32
	const numChannels = 1
	const audioFormatFloat = 3

	dataSize := uint32(len(samples) * 4)
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)
	riffSize := 4 + (8 + 16) + (8 + dataSize)

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, riffSize)
	b.WriteString("WAVE")

	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(audioFormatFloat))
	binary.Write(&b, binary.LittleEndian, uint16(numChannels))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&b, binary.LittleEndian, byteRate)
	binary.Write(&b, binary.LittleEndian, blockAlign)
	binary.Write(&b, binary.LittleEndian, uint16(bitsPerSample))

	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, dataSize)
	binary.Write(&b, binary.LittleEndian, samples)

	_, err := w.Write(b.Bytes())
	if err != nil {
		return &BackendIOError{Message: "failed to write wav: " + err.Error()}
	}
	return nil
}

func decodeSamples(raw []byte, bitsPerSample uint16) ([]float32, error) {
	switch bitsPerSample {
	case 16:
		count := len(raw) / 2
		samples := make([]float32, count)
		for i := 0; i < count; i++ {
			v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
			samples[i] = float32(v) / 32768.0
		}
		return samples, nil
	case 32:
		count := len(raw) / 4
		samples := make([]float32, count)
		buf := bytes.NewReader(raw)
		if err := binary.Read(buf, binary.LittleEndian, samples); err != nil {
			return nil, &BackendIOError{Message: "failed to decode 32-bit samples: " + err.Error()}
		}
		return samples, nil
	default:
		return nil, &BackendIOError{Message: fmt.Sprintf("unsupported bit depth: %d", bitsPerSample)}
	}
}
