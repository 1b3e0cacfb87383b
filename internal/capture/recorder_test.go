package capture

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondmemory/fond-memory/internal/model"
)

// chanStream is a Stream fed directly by the test.
type chanStream struct {
	ch     chan []byte
	once   sync.Once
	closed int
}

func newChanStream() *chanStream { return &chanStream{ch: make(chan []byte, 8)} }

func (s *chanStream) Chunks() <-chan []byte { return s.ch }

func (s *chanStream) Close() error {
	s.once.Do(func() {
		s.closed++
		close(s.ch)
	})
	return nil
}

// fakeDevice hands out a prepared stream, or fails. gate, when set, holds
// Open until it is closed.
type fakeDevice struct {
	stream *chanStream
	err    error
	gate   chan struct{}
	opens  int
	mu     sync.Mutex
}

func (d *fakeDevice) Open(ctx context.Context) (Stream, error) {
	d.mu.Lock()
	d.opens++
	d.mu.Unlock()
	if d.gate != nil {
		<-d.gate
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.stream, nil
}

// fakeItems records the payload it was asked to wrap.
type fakeItems struct {
	data        []byte
	name        string
	contentType string
	calls       int
}

func (f *fakeItems) FromBytes(ctx context.Context, name, contentType string, data []byte) (model.MediaItem, error) {
	f.calls++
	f.data = append([]byte(nil), data...)
	f.name = name
	f.contentType = contentType
	return model.MediaItem{
		ID:   "item",
		Kind: model.KindAudio,
		URL:  "blob:sha256:test",
		Name: name,
		Size: int64(len(data)),
		Type: contentType,
	}, nil
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRecordConcatenatesChunksInOrder(t *testing.T) {
	ctx := testCtx(t)
	stream := newChanStream()
	items := &fakeItems{}
	fixed := time.UnixMilli(1700000000000)
	r := NewRecorder(&fakeDevice{stream: stream}, items, Options{Now: func() time.Time { return fixed }})

	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Await(ctx))
	assert.Equal(t, Recording, r.State())

	stream.ch <- []byte("c1")
	stream.ch <- []byte("c2")

	item, err := r.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, Idle, r.State())
	assert.Equal(t, 1, items.calls, "exactly one item per recording")
	assert.Equal(t, "c1c2", string(items.data))
	assert.Equal(t, "audio-1700000000000.webm", item.Name)
	assert.Equal(t, "audio/webm", item.Type)
	assert.Equal(t, model.KindAudio, item.Kind)
	assert.Equal(t, int64(4), item.Size)
	assert.Equal(t, 1, stream.closed, "device stream is closed on stop")
}

func TestDeviceUnavailableResetsToIdle(t *testing.T) {
	ctx := testCtx(t)
	items := &fakeItems{}
	var gotErr error
	r := NewRecorder(&fakeDevice{err: errors.New("permission denied")}, items, Options{
		OnError: func(err error) { gotErr = err },
	})

	require.NoError(t, r.Start(ctx))
	err := r.Await(ctx)
	require.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.ErrorIs(t, gotErr, ErrDeviceUnavailable)
	assert.Equal(t, Idle, r.State())

	_, err = r.Stop(ctx)
	assert.ErrorIs(t, err, ErrNotRecording)
	assert.Equal(t, 0, items.calls, "no item is produced")

	r.mu.Lock()
	assert.Nil(t, r.cur, "no dangling device handle")
	r.mu.Unlock()
}

func TestStartIsGuarded(t *testing.T) {
	ctx := testCtx(t)
	gate := make(chan struct{})
	dev := &fakeDevice{stream: newChanStream(), gate: gate}
	r := NewRecorder(dev, &fakeItems{}, Options{})

	require.NoError(t, r.Start(ctx))
	assert.Equal(t, RequestingDevice, r.State())
	assert.ErrorIs(t, r.Start(ctx), ErrSessionActive, "no double start while requesting")

	close(gate)
	require.NoError(t, r.Await(ctx))
	assert.ErrorIs(t, r.Start(ctx), ErrSessionActive, "no double start while recording")

	dev.mu.Lock()
	assert.Equal(t, 1, dev.opens)
	dev.mu.Unlock()
}

func TestStopWhileRequestingIsRejected(t *testing.T) {
	ctx := testCtx(t)
	gate := make(chan struct{})
	r := NewRecorder(&fakeDevice{stream: newChanStream(), gate: gate}, &fakeItems{}, Options{})

	require.NoError(t, r.Start(ctx))
	_, err := r.Stop(ctx)
	assert.ErrorIs(t, err, ErrNotRecording)

	close(gate)
	require.NoError(t, r.Await(ctx))
	assert.Equal(t, Recording, r.State())
}

func TestEmptyRecordingIsRejected(t *testing.T) {
	ctx := testCtx(t)
	items := &fakeItems{}
	r := NewRecorder(&fakeDevice{stream: newChanStream()}, items, Options{})

	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Await(ctx))

	_, err := r.Stop(ctx)
	assert.ErrorIs(t, err, ErrEmptyRecording)
	assert.Equal(t, Idle, r.State())
	assert.Equal(t, 0, items.calls)
}

func TestRecorderCanRecordAgain(t *testing.T) {
	ctx := testCtx(t)
	items := &fakeItems{}
	dev := &fakeDevice{}
	r := NewRecorder(dev, items, Options{ContentType: "audio/ogg", Extension: "ogg"})

	for _, payload := range []string{"first", "second"} {
		dev.stream = newChanStream()
		require.NoError(t, r.Start(ctx))
		require.NoError(t, r.Await(ctx))
		dev.stream.ch <- []byte(payload)

		item, err := r.Stop(ctx)
		require.NoError(t, err)
		assert.Equal(t, payload, string(items.data), "buffer is cleared between sessions")
		assert.Equal(t, "audio/ogg", item.Type)
		assert.True(t, strings.HasSuffix(item.Name, ".ogg"))
	}
}

func TestStateChangeHook(t *testing.T) {
	ctx := testCtx(t)
	stream := newChanStream()
	var mu sync.Mutex
	var states []State
	r := NewRecorder(&fakeDevice{stream: stream}, &fakeItems{}, Options{
		OnStateChange: func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		},
	})

	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Await(ctx))
	stream.ch <- []byte("x")
	_, err := r.Stop(ctx)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{RequestingDevice, Recording, Idle}, states)
}

func TestAwaitWithoutStart(t *testing.T) {
	r := NewRecorder(&fakeDevice{}, &fakeItems{}, Options{})
	assert.ErrorIs(t, r.Await(context.Background()), ErrNotRecording)
	assert.Nil(t, r.Ended())
}

func TestReaderDevice(t *testing.T) {
	ctx := testCtx(t)
	items := &fakeItems{}
	src := bytes.NewReader(bytes.Repeat([]byte("ab"), 10))
	r := NewRecorder(&ReaderDevice{R: src, ChunkSize: 3}, items, Options{})

	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Await(ctx))

	select {
	case <-r.Ended():
	case <-ctx.Done():
		t.Fatal("reader device never reached EOF")
	}
	assert.Equal(t, Recording, r.State(), "stays recording until stopped")

	_, err := r.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ab", 10), string(items.data))
}

func TestReaderDeviceNoInput(t *testing.T) {
	_, err := (&ReaderDevice{}).Open(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestCommandDeviceMissingBinary(t *testing.T) {
	_, err := (&CommandDevice{Argv: []string{"definitely-not-a-recorder-binary"}}).Open(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)

	_, err = (&CommandDevice{}).Open(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandDeviceExitsWithoutOutput(t *testing.T) {
	requireShell(t)
	dev := &CommandDevice{Argv: []string{"sh", "-c", "echo 'no such device' >&2; exit 1"}}

	_, err := dev.Open(testCtx(t))
	require.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.Contains(t, err.Error(), "no such device")

	_, err = (&CommandDevice{Argv: []string{"sh", "-c", "exit 1"}}).Open(testCtx(t))
	require.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestRecorderFailingCommandEndsIdle(t *testing.T) {
	requireShell(t)
	ctx := testCtx(t)
	items := &fakeItems{}
	r := NewRecorder(&CommandDevice{Argv: []string{"sh", "-c", "echo 'no such device' >&2; exit 1"}}, items, Options{})

	require.NoError(t, r.Start(ctx))
	err := r.Await(ctx)
	require.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.Equal(t, Idle, r.State())

	_, err = r.Stop(ctx)
	assert.ErrorIs(t, err, ErrNotRecording)
	assert.Equal(t, 0, items.calls)
}

func TestRecorderCommandDevice(t *testing.T) {
	requireShell(t)
	ctx := testCtx(t)
	items := &fakeItems{}
	r := NewRecorder(&CommandDevice{Argv: []string{"sh", "-c", "printf abc; printf def"}, ChunkSize: 2}, items, Options{})

	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Await(ctx))
	assert.Equal(t, Recording, r.State())

	select {
	case <-r.Ended():
	case <-ctx.Done():
		t.Fatal("recorder command output never ended")
	}

	_, err := r.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(items.data))
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{max: 4}
	_, _ = b.Write([]byte("ab"))
	_, _ = b.Write([]byte("cdef"))
	assert.Equal(t, "cdef", b.String())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "requesting-device", RequestingDevice.String())
	assert.Equal(t, "recording", Recording.String())
}
