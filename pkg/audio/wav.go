// Package audio provides WAV container helpers for recorded utterances.
//
// Uploaded microphone recordings arrive as RIFF/WAVE files containing 16-bit
// signed little-endian PCM. This package validates that container, extracts
// the raw PCM payload, and re-encodes PCM into a minimal WAV file, without
// external dependencies.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// bitsPerSample is fixed at 16 for the PCM audio this system handles.
const bitsPerSample = 16

// ErrNotWAV is returned by Decode when the input does not carry a RIFF/WAVE
// header.
var ErrNotWAV = errors.New("audio: not a RIFF/WAVE file")

// Info describes the format of a decoded WAV file.
type Info struct {
	// SampleRate is the audio sample rate in Hz.
	SampleRate int

	// Channels is the number of audio channels.
	Channels int

	// Data is the raw PCM payload of the data chunk.
	Data []byte
}

// Duration returns the playback length of the PCM payload.
func (i Info) Duration() time.Duration {
	bytesPerSec := i.SampleRate * i.Channels * (bitsPerSample / 8)
	if bytesPerSec <= 0 {
		return 0
	}
	return time.Duration(len(i.Data)) * time.Second / time.Duration(bytesPerSec)
}

// Decode parses a RIFF/WAVE byte slice and returns its format and PCM
// payload. Only uncompressed 16-bit PCM is accepted. Chunks other than "fmt "
// and "data" (e.g. "LIST" metadata written by browser recorders) are skipped.
func Decode(b []byte) (Info, error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Info{}, ErrNotWAV
	}

	var (
		info    Info
		haveFmt bool
	)

	// Walk the chunk list after the 12-byte RIFF descriptor.
	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(b) {
			return Info{}, fmt.Errorf("audio: truncated %q chunk", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return Info{}, fmt.Errorf("audio: fmt chunk too small (%d bytes)", size)
			}
			format := binary.LittleEndian.Uint16(b[body : body+2])
			if format != 1 {
				return Info{}, fmt.Errorf("audio: unsupported WAV format %d (want PCM)", format)
			}
			info.Channels = int(binary.LittleEndian.Uint16(b[body+2 : body+4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
			bps := binary.LittleEndian.Uint16(b[body+14 : body+16])
			if bps != bitsPerSample {
				return Info{}, fmt.Errorf("audio: unsupported bit depth %d (want %d)", bps, bitsPerSample)
			}
			haveFmt = true

		case "data":
			info.Data = b[body : body+size]
		}

		// Chunks are word-aligned; odd sizes carry a pad byte.
		off = body + size + size%2
	}

	if !haveFmt {
		return Info{}, errors.New("audio: missing fmt chunk")
	}
	if info.Data == nil {
		return Info{}, errors.New("audio: missing data chunk")
	}
	if info.Channels <= 0 || info.SampleRate <= 0 {
		return Info{}, fmt.Errorf("audio: invalid format (%d channels, %d Hz)", info.Channels, info.SampleRate)
	}
	return info, nil
}

// EncodeWAV wraps raw 16-bit signed little-endian PCM data in a standard
// 44-byte RIFF/WAV container.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(pcm)

	buf := make([]byte, 44+dataSize)

	// RIFF chunk descriptor
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize)) // file size − 8
	copy(buf[8:12], "WAVE")

	// fmt sub-chunk
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)                 // sub-chunk size (PCM)
	binary.LittleEndian.PutUint16(buf[20:22], 1)                  // audio format: PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))   // num channels
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate)) // sample rate
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))   // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign)) // block align
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)      // bits per sample

	// data sub-chunk
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)

	return buf
}

// PCMToFloat32Mono down-mixes 16-bit PCM to mono float32 samples normalised
// to [-1.0, 1.0], averaging all channels per frame. Used by the native
// whisper transcriber, which consumes float32 mono.
func PCMToFloat32Mono(pcm []byte, channels int) []float32 {
	if channels < 1 {
		channels = 1
	}
	samplesPerFrame := 2 * channels
	frames := len(pcm) / samplesPerFrame
	mono := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range channels {
			idx := i*samplesPerFrame + ch*2
			sample := int16(binary.LittleEndian.Uint16(pcm[idx : idx+2]))
			sum += float32(sample) / 32768.0
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
