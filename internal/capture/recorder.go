// Package capture models a live audio recording as a guarded state machine:
// idle → requesting-device → recording → idle.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fondmemory/fond-memory/internal/model"
)

var (
	// ErrSessionActive is returned by Start while a session is requesting
	// the device or recording.
	ErrSessionActive = errors.New("capture session already active")

	// ErrNotRecording is returned by Stop outside the recording state.
	ErrNotRecording = errors.New("not recording")

	// ErrEmptyRecording is returned by Stop when nothing was captured. The
	// session still returns to idle.
	ErrEmptyRecording = errors.New("recording captured no data")
)

// State is the recorder status.
type State int

const (
	Idle State = iota
	RequestingDevice
	Recording
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RequestingDevice:
		return "requesting-device"
	case Recording:
		return "recording"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ItemMaker wraps a finished recording as a MediaItem.
type ItemMaker interface {
	FromBytes(ctx context.Context, name, contentType string, data []byte) (model.MediaItem, error)
}

// Options configures a Recorder.
type Options struct {
	// ContentType is the fixed encoding of every recording.
	ContentType string
	// Extension is used in the synthetic file name.
	Extension string

	Logger        *zap.Logger
	OnStateChange func(State)
	OnError       func(error)
	Now           func() time.Time
}

const (
	DefaultContentType = "audio/webm"
	DefaultExtension   = "webm"
)

// Recorder owns at most one capture session at a time.
type Recorder struct {
	device Device
	items  ItemMaker
	opts   Options

	mu      sync.Mutex
	state   State
	cur     *session
	attempt *session
}

type session struct {
	id       string
	stream   Stream
	chunks   [][]byte
	ready    chan struct{}
	drained  chan struct{}
	openErr  error
	stopping bool
	finished bool
}

// NewRecorder returns an idle Recorder capturing from device.
func NewRecorder(device Device, items ItemMaker, opts Options) *Recorder {
	if opts.ContentType == "" {
		opts.ContentType = DefaultContentType
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Recorder{device: device, items: items, opts: opts}
}

// State returns the current status.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start requests the device and returns without waiting for it. A second
// Start while requesting or recording fails with ErrSessionActive.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != Idle {
		r.mu.Unlock()
		return ErrSessionActive
	}
	sess := &session{
		id:      uuid.NewString(),
		ready:   make(chan struct{}),
		drained: make(chan struct{}),
	}
	r.cur = sess
	r.attempt = sess
	r.state = RequestingDevice
	r.mu.Unlock()

	r.opts.Logger.Debug("requesting capture device", zap.String("session", sess.id))
	r.notify(RequestingDevice)

	go r.acquire(ctx, sess)
	return nil
}

func (r *Recorder) acquire(ctx context.Context, sess *session) {
	stream, err := r.device.Open(ctx)
	if err == nil && stream == nil {
		err = errors.New("device returned no stream")
	}

	r.mu.Lock()
	if err != nil {
		if !errors.Is(err, ErrDeviceUnavailable) {
			err = fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		}
		sess.openErr = err
		r.cur = nil
		r.state = Idle
		r.mu.Unlock()

		r.opts.Logger.Warn("capture device unavailable", zap.String("session", sess.id), zap.Error(err))
		r.notify(Idle)
		if r.opts.OnError != nil {
			r.opts.OnError(err)
		}
		close(sess.ready)
		return
	}

	sess.stream = stream
	r.state = Recording
	r.mu.Unlock()

	r.opts.Logger.Info("recording started", zap.String("session", sess.id))
	r.notify(Recording)
	close(sess.ready)
	go r.pump(sess)
}

func (r *Recorder) pump(sess *session) {
	defer close(sess.drained)
	for c := range sess.stream.Chunks() {
		r.mu.Lock()
		if !sess.finished {
			sess.chunks = append(sess.chunks, c)
		}
		r.mu.Unlock()
	}
}

// Await blocks until the most recent Start has resolved. It returns nil
// once recording, or an error wrapping ErrDeviceUnavailable.
func (r *Recorder) Await(ctx context.Context) error {
	r.mu.Lock()
	sess := r.attempt
	r.mu.Unlock()
	if sess == nil {
		return ErrNotRecording
	}

	select {
	case <-sess.ready:
		return sess.openErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ended returns a channel closed once the device stream of the current
// recording has delivered its last chunk, which happens when the source runs
// dry on its own or after Stop. It is nil outside the recording state.
func (r *Recorder) Ended() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Recording || r.cur == nil {
		return nil
	}
	return r.cur.drained
}

// Stop ends the recording and returns it as one audio MediaItem whose
// payload is every captured chunk in arrival order. ctx bounds how long
// Stop waits for the device to flush.
func (r *Recorder) Stop(ctx context.Context) (model.MediaItem, error) {
	r.mu.Lock()
	sess := r.cur
	if r.state != Recording || sess == nil || sess.stopping {
		r.mu.Unlock()
		return model.MediaItem{}, ErrNotRecording
	}
	sess.stopping = true
	r.mu.Unlock()

	if err := sess.stream.Close(); err != nil {
		r.opts.Logger.Warn("close capture stream", zap.String("session", sess.id), zap.Error(err))
	}

	select {
	case <-sess.drained:
	case <-ctx.Done():
		r.opts.Logger.Warn("capture stream did not drain; keeping buffered data",
			zap.String("session", sess.id))
	}

	r.mu.Lock()
	sess.finished = true
	data := bytes.Join(sess.chunks, nil)
	chunks := len(sess.chunks)
	sess.chunks = nil
	r.cur = nil
	r.state = Idle
	r.mu.Unlock()
	r.notify(Idle)

	r.opts.Logger.Info("recording stopped",
		zap.String("session", sess.id), zap.Int("chunks", chunks), zap.Int("bytes", len(data)))

	if len(data) == 0 {
		return model.MediaItem{}, ErrEmptyRecording
	}

	name := fmt.Sprintf("audio-%d.%s", r.opts.Now().UnixMilli(), r.opts.Extension)
	item, err := r.items.FromBytes(context.WithoutCancel(ctx), name, r.opts.ContentType, data)
	if err != nil {
		return model.MediaItem{}, fmt.Errorf("save recording: %w", err)
	}
	item.Kind = model.KindAudio
	return item, nil
}

func (r *Recorder) notify(s State) {
	if r.opts.OnStateChange != nil {
		r.opts.OnStateChange(s)
	}
}
