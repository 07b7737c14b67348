package audio

import (
	"errors"
	"io"
	"log/slog"

	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/errorsx"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/metrics"
	"github.com/chinmayea/cognitive-services-speech-sdk/pkg/transports"
)

// Sender is the transmit half of the transport consumed by the Writer.
type Sender interface {
	SendAudio(p []byte) error
}

// Writer turns arbitrary variable-length audio writes into fixed-size
// transmissions. Until a capacity is configured it forwards writes to
// the sender unmodified.
//
// Writer state is owned by the audio-producing goroutine; it is not safe
// for concurrent use and needs no lock of its own.
type Writer struct {
	sender Sender
	mirror io.Writer
	logger *slog.Logger
	m      *metrics.Metrics

	buffered bool
	capacity int
	buf      []byte
	filled   int
}

// NewWriter creates a pass-through writer. Call SetCapacity once the
// stream format is known to switch to the buffered strategy.
func NewWriter(sender Sender, logger *slog.Logger, m *metrics.Metrics) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{sender: sender, logger: logger, m: m}
}

// SetMirror installs an optional raw-audio mirror. Every transmitted
// payload is also written to it; mirror failures are ignored.
func (w *Writer) SetMirror(mirror io.Writer) { w.mirror = mirror }

// SetCapacity selects the write strategy for the stream: buffered with
// the given accumulation capacity, or pass-through when n is zero. The
// strategy is chosen here, not re-decided per write. An already filled
// buffer keeps its old capacity until the next flush releases it.
func (w *Writer) SetCapacity(n int) {
	w.capacity = n
	w.buffered = n > 0
}

// Write accumulates p and transmits every full buffer. Zero-byte writes
// are no-ops. Transmission failures other than the zero-length quirk
// propagate to the caller.
func (w *Writer) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if !w.buffered {
		return w.transmit(p)
	}
	return w.writeBuffered(p, false)
}

// Flush transmits the filled portion of the buffer and releases it;
// subsequent writes reallocate. The trailing zero-byte send doubles as
// the transport-level flush signal.
func (w *Writer) Flush() error {
	if !w.buffered || w.buf == nil {
		return w.transmit(nil)
	}
	return w.writeBuffered(nil, true)
}

func (w *Writer) writeBuffered(p []byte, flush bool) error {
	if w.buf == nil {
		w.buf = make([]byte, w.capacity)
		w.filled = 0
	}
	for {
		if flush || w.filled == len(w.buf) {
			if err := w.transmit(w.buf[:w.filled]); err != nil {
				return err
			}
			w.filled = 0
		}
		if flush {
			w.buf = nil
			if w.m != nil {
				w.m.Flushes.Inc()
			}
		}
		if len(p) == 0 {
			return nil
		}
		n := copy(w.buf[w.filled:], p)
		w.filled += n
		p = p[n:]
	}
}

func (w *Writer) transmit(p []byte) error {
	err := w.sender.SendAudio(p)
	if err != nil {
		// A zero-length send is the transport's flush signal; the
		// failure it reports for it is a known quirk, not an error.
		if len(p) == 0 && errors.Is(err, transports.ErrZeroLengthSend) {
			err = nil
		} else {
			return errorsx.Wrap(err, errorsx.ReasonTransportSend)
		}
	}
	if len(p) > 0 {
		if w.mirror != nil {
			_, _ = w.mirror.Write(p)
		}
		if w.m != nil {
			w.m.Transmissions.Inc()
			w.m.BytesTransmitted.Add(float64(len(p)))
		}
		w.logger.Debug("audio_transmitted", slog.Int("size_bytes", len(p)))
	}
	return nil
}
