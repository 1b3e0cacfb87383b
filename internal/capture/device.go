package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// ErrDeviceUnavailable is returned when the capture device cannot be opened.
var ErrDeviceUnavailable = errors.New("capture device unavailable")

// DefaultChunkSize is the read size used by the built-in devices.
const DefaultChunkSize = 32 * 1024

// Device grants access to an audio source.
type Device interface {
	// Open starts capturing. Failures should wrap ErrDeviceUnavailable.
	Open(ctx context.Context) (Stream, error)
}

// Stream is an active capture. Chunks delivers data in arrival order and is
// closed once the stream has ended; after Close it still delivers whatever
// was captured before stopping.
type Stream interface {
	Chunks() <-chan []byte
	Close() error
}

// ReaderDevice captures from an io.Reader, e.g. stdin fed by an external
// recorder.
type ReaderDevice struct {
	R         io.Reader
	ChunkSize int
}

func (d *ReaderDevice) Open(ctx context.Context) (Stream, error) {
	if d.R == nil {
		return nil, fmt.Errorf("%w: no input", ErrDeviceUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	s := newPumpStream(nil)
	go s.pump(d.R, chunkSize(d.ChunkSize))
	return s, nil
}

// CommandDevice captures the stdout of an external recorder such as ffmpeg
// or arecord. Open returns once the recorder has produced its first chunk;
// a recorder that exits before writing anything is reported as
// ErrDeviceUnavailable with the tail of its stderr. Close interrupts the
// process and drains its remaining output.
type CommandDevice struct {
	Argv      []string
	ChunkSize int
}

// stderrTailSize bounds the recorder diagnostics kept for error messages.
const stderrTailSize = 512

type firstRead struct {
	data []byte
	err  error
}

func (d *CommandDevice) Open(ctx context.Context) (Stream, error) {
	if len(d.Argv) == 0 {
		return nil, fmt.Errorf("%w: no capture command configured", ErrDeviceUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if _, err := exec.LookPath(d.Argv[0]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	// Not CommandContext: the recording must outlive the request context.
	cmd := exec.Command(d.Argv[0], d.Argv[1:]...)
	stderr := &tailBuffer{max: stderrTailSize}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	size := chunkSize(d.ChunkSize)
	first := make(chan firstRead, 1)
	go func() {
		buf := make([]byte, size)
		for {
			n, err := stdout.Read(buf)
			if n > 0 || err != nil {
				first <- firstRead{data: buf[:n], err: err}
				return
			}
		}
	}()

	var fr firstRead
	select {
	case fr = <-first:
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-first
		_ = cmd.Wait()
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, ctx.Err())
	}

	if len(fr.data) == 0 {
		waitErr := cmd.Wait()
		return nil, fmt.Errorf("%w: %s", ErrDeviceUnavailable, exitReason(waitErr, stderr.String()))
	}

	s := newPumpStream(func() error {
		if err := cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
			_ = cmd.Process.Kill()
		}
		return nil
	})
	s.ch <- fr.data
	go func() {
		s.pump(stdout, size)
		_ = cmd.Wait()
	}()
	return s, nil
}

func exitReason(waitErr error, stderr string) string {
	stderr = strings.TrimSpace(stderr)
	switch {
	case stderr != "":
		return stderr
	case waitErr != nil:
		return waitErr.Error()
	default:
		return "recorder exited without producing audio"
	}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

func chunkSize(n int) int {
	if n <= 0 {
		return DefaultChunkSize
	}
	return n
}

// pumpStream copies reads from a source into a channel until EOF.
type pumpStream struct {
	ch       chan []byte
	stop     func() error
	stopOnce sync.Once
	stopped  chan struct{}
}

func newPumpStream(stop func() error) *pumpStream {
	return &pumpStream{
		ch:      make(chan []byte, 16),
		stop:    stop,
		stopped: make(chan struct{}),
	}
}

func (s *pumpStream) Chunks() <-chan []byte { return s.ch }

func (s *pumpStream) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopped)
		if s.stop != nil {
			err = s.stop()
		}
	})
	return err
}

func (s *pumpStream) pump(r io.Reader, size int) {
	defer close(s.ch)
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.ch <- chunk
		}
		if err != nil {
			return
		}
		if s.stop == nil {
			// Reader sources have no process to interrupt; stop at the next
			// chunk boundary.
			select {
			case <-s.stopped:
				return
			default:
			}
		}
	}
}
