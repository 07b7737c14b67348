package audio

import "encoding/binary"

// Format describes the sample layout of an audio stream. It mirrors the
// classic wave format descriptor: a fixed 16-byte prefix followed by
// opaque codec-specific extra bytes.
type Format struct {
	Tag            uint16
	Channels       uint16
	SamplesPerSec  uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	Extra          []byte
}

const formatBaseSize = 16

// FormatTagPCM is the descriptor tag for linear PCM.
const FormatTagPCM = 1

// PCM16 builds a 16-bit linear PCM format descriptor.
func PCM16(samplesPerSec uint32, channels uint16) Format {
	blockAlign := channels * 2
	return Format{
		Tag:            FormatTagPCM,
		Channels:       channels,
		SamplesPerSec:  samplesPerSec,
		AvgBytesPerSec: samplesPerSec * uint32(blockAlign),
		BlockAlign:     blockAlign,
		BitsPerSample:  16,
	}
}

// EncodedSize is the exact byte length of the serialized descriptor.
func (f Format) EncodedSize() int {
	return formatBaseSize + len(f.Extra)
}

func (f Format) appendEncoding(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, f.Tag)
	buf = binary.LittleEndian.AppendUint16(buf, f.Channels)
	buf = binary.LittleEndian.AppendUint32(buf, f.SamplesPerSec)
	buf = binary.LittleEndian.AppendUint32(buf, f.AvgBytesPerSec)
	buf = binary.LittleEndian.AppendUint16(buf, f.BlockAlign)
	buf = binary.LittleEndian.AppendUint16(buf, f.BitsPerSample)
	return append(buf, f.Extra...)
}

// PreferredBufferSize derives the accumulation buffer capacity for a
// transmit window of the given duration.
func (f Format) PreferredBufferSize(millis int) int {
	return int(f.SamplesPerSec) * int(f.BlockAlign) * millis / 1000
}
