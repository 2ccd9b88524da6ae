// Package audio wraps raw PCM in a playable container. Raw samples from
// a realtime session are not a valid artifact until they carry a header
// describing channel count, sample width and sample rate.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PCMFormat describes the layout of raw samples.
type PCMFormat struct {
	Channels      int
	BitsPerSample int
	SampleRate    int
}

// DefaultFormat matches the realtime music backends: stereo 16-bit 44.1kHz.
var DefaultFormat = PCMFormat{
	Channels:      2,
	BitsPerSample: 16,
	SampleRate:    44100,
}

// WriteWAV writes a RIFF/WAVE envelope around the raw PCM data.
func WriteWAV(w io.Writer, format PCMFormat, pcm []byte) error {
	if format.Channels <= 0 || format.BitsPerSample <= 0 || format.SampleRate <= 0 {
		return fmt.Errorf("invalid pcm format %+v", format)
	}

	byteRate := format.SampleRate * format.Channels * format.BitsPerSample / 8
	blockAlign := format.Channels * format.BitsPerSample / 8

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(header[22:24], uint16(format.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(format.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(format.BitsPerSample))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}
