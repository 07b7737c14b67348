package recognizer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// newDumpMirror creates the per-session raw audio capture file. The
// file receives every transmitted payload, header included, so the
// capture replays exactly what went over the wire.
func newDumpMirror(dir, sessionID string) (io.WriteCloser, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dump directory: %w", err)
	}
	name := filepath.Join(dir, fmt.Sprintf("audiodump_%s.wav", sessionID))
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create dump file: %w", err)
	}
	return f, nil
}
