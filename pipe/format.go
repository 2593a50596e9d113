package pipe

import "encoding/binary"

// AppendInt16LE converts samples to signed 16-bit little-endian PCM and
// appends them to dst. Every sample is written numChannels times. Samples
// are clamped to [-1, 1] and scaled by 32767 with truncation toward zero.
func AppendInt16LE(dst []byte, src []float64, numChannels int) []byte {
	for _, v := range src {
		switch {
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		case v != v:
			// NaN
			v = 0
		}
		s := uint16(int16(v * 32767))
		for c := 0; c < numChannels; c++ {
			dst = binary.LittleEndian.AppendUint16(dst, s)
		}
	}
	return dst
}
