package audio

import (
	"encoding/binary"
	"fmt"
)

const (
	tagSize       = 4
	chunkSizeSize = 4
)

// EncodeHeader synthesizes the one-time binary stream preamble for a
// format: a RIFF/WAVE-style container header followed by an open-ended
// data chunk. The RIFF and data sizes are zero placeholders; the true
// payload length is not known up front and downstream consumers must
// treat them as advisory only.
//
// Output is byte-for-byte deterministic for identical input.
func EncodeHeader(f Format) []byte {
	fmtChunkSize := f.EncodedSize()

	headerSize :=
		tagSize + chunkSizeSize + // 'RIFF' + placeholder size
			tagSize + // 'WAVE'
			tagSize + chunkSizeSize + // 'fmt ' + descriptor size
			fmtChunkSize + // serialized descriptor
			tagSize + chunkSizeSize // 'data' + placeholder size

	buf := make([]byte, 0, headerSize)
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(fmtChunkSize))
	buf = f.appendEncoding(buf)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, 0)

	if len(buf) != headerSize {
		panic(fmt.Sprintf("audio: header length %d, expected %d", len(buf), headerSize))
	}
	return buf
}
