package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fondmemory/fond-memory/internal/capture"
	"github.com/fondmemory/fond-memory/internal/model"
)

// stopTimeout bounds how long Stop waits for the recorder to flush.
const stopTimeout = 5 * time.Second

func init() {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a voice note as a new memory",
		Long: "Record audio from the configured capture command (or stdin with --from -) until " +
			"Ctrl-C, --duration or the end of input, then save it as a memory.",
		Run: runRecord,
	}

	cmd.Flags().StringP("title", "t", "", "Title (required)")
	cmd.Flags().StringP("category", "c", string(model.CategoryFamily), "Category: family, couple, pets, legacy")
	cmd.Flags().String("from", "", "Audio source: empty for capture.command, - for stdin")
	cmd.Flags().Duration("duration", 0, "Stop after this long (default: until Ctrl-C)")

	RootCmd.AddCommand(cmd)
}

func runRecord(cmd *cobra.Command, args []string) {
	title, _ := cmd.Flags().GetString("title")
	category, _ := cmd.Flags().GetString("category")
	from, _ := cmd.Flags().GetString("from")
	duration, _ := cmd.Flags().GetDuration("duration")

	// Reject a bad draft before touching the microphone.
	if err := checkDraft(title, model.Category(category), 1); err != nil {
		exitErr("record", err)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open album", err)
	}
	defer a.Close()

	m, err := addMemory(cmd.Context(), a, addRequest{
		title:    title,
		category: model.Category(category),
		record: func(ctx context.Context) (model.MediaItem, error) {
			return captureAudio(ctx, a, from, duration)
		},
	})
	if err != nil {
		exitErr("record", err)
	}
	printMemory(m)
}

func captureDevice(a *app, from string) capture.Device {
	if from == "-" {
		return &capture.ReaderDevice{R: os.Stdin, ChunkSize: a.cfg.Capture.ChunkSize}
	}
	return &capture.CommandDevice{Argv: a.cfg.Capture.Command, ChunkSize: a.cfg.Capture.ChunkSize}
}

// captureAudio runs one recording session and returns the stored item. It
// stops on SIGINT/SIGTERM, after duration when positive, or when the source
// ends by itself.
func captureAudio(ctx context.Context, a *app, from string, duration time.Duration) (model.MediaItem, error) {
	var deviceErr error
	rec := capture.NewRecorder(captureDevice(a, from), a.items, capture.Options{
		ContentType: a.cfg.Capture.ContentType,
		Extension:   a.cfg.Capture.Extension,
		Logger:      a.logger,
		OnStateChange: func(s capture.State) {
			a.logger.Debug("recorder state", zap.Stringer("state", s))
		},
		OnError: func(err error) { deviceErr = err },
	})

	if err := rec.Start(ctx); err != nil {
		return model.MediaItem{}, err
	}
	if err := rec.Await(ctx); err != nil {
		if deviceErr != nil && from != "-" {
			return model.MediaItem{}, fmt.Errorf("%w (capture.command: %v)", deviceErr, a.cfg.Capture.Command)
		}
		return model.MediaItem{}, err
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	var timeout <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		timeout = timer.C
	}

	if from != "-" {
		fmt.Fprintln(os.Stderr, "Recording... press Ctrl-C to stop.")
	}
	select {
	case <-sigCtx.Done():
	case <-timeout:
	case <-rec.Ended():
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	item, err := rec.Stop(stopCtx)
	if errors.Is(err, capture.ErrEmptyRecording) {
		return model.MediaItem{}, fmt.Errorf("%w (check capture.command)", err)
	}
	return item, err
}
