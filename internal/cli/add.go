package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/fondmemory/fond-memory/internal/album"
	"github.com/fondmemory/fond-memory/internal/media"
	"github.com/fondmemory/fond-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add [files...]",
		Short: "Add a memory",
		Long: "Add a memory with a title, a category and one or more photos, videos or audio files. " +
			"Use --record to capture a voice note and attach it as well.",
		Run: runAdd,
	}

	cmd.Flags().StringP("title", "t", "", "Title (required)")
	cmd.Flags().StringP("category", "c", string(model.CategoryFamily), "Category: family, couple, pets, legacy")
	cmd.Flags().Bool("strict-types", false, "Reject files that are not image, video or audio")
	cmd.Flags().Bool("record", false, "Record a voice note and attach it")
	cmd.Flags().Duration("duration", 0, "Stop --record after this long (default: until Ctrl-C)")

	RootCmd.AddCommand(cmd)
}

// addRequest is one `add` invocation. record, when set, captures the voice
// note; it runs after the files are stored.
type addRequest struct {
	title    string
	category model.Category
	files    []string
	strict   bool
	record   func(ctx context.Context) (model.MediaItem, error)
}

// checkDraft rejects a title or category that would block the submission,
// before any media is stored or recorded.
func checkDraft(title string, category model.Category, mediaCount int) error {
	_, err := album.NewMemory(album.Draft{
		Title:    title,
		Category: category,
		Media:    make([]model.MediaItem, mediaCount),
	}, time.Now())
	return err
}

// addMemory validates the draft, stores its media and adds the memory. If
// anything fails after media was stored, the stored payloads are released.
func addMemory(ctx context.Context, a *app, req addRequest) (model.Memory, error) {
	count := len(req.files)
	if req.record != nil {
		count++
	}
	if err := checkDraft(req.title, req.category, count); err != nil {
		return model.Memory{}, err
	}

	items := a.items
	if req.strict {
		items = media.NewFactory(a.db, media.OnlyAllowed())
	}

	var stored []model.MediaItem
	fail := func(err error) (model.Memory, error) {
		if len(stored) > 0 {
			a.album.Release(ctx)
		}
		return model.Memory{}, err
	}

	for _, path := range req.files {
		item, err := items.FromFile(ctx, path, "")
		if err != nil {
			return fail(err)
		}
		stored = append(stored, item)
	}

	if req.record != nil {
		item, err := req.record(ctx)
		if err != nil {
			return fail(err)
		}
		stored = append(stored, item)
	}

	m, err := album.NewMemory(album.Draft{
		Title:    req.title,
		Category: req.category,
		Media:    stored,
	}, time.Now())
	if err != nil {
		return fail(err)
	}

	// A failed save keeps the memory in the album, so its media stays.
	if err := a.album.Add(ctx, m); err != nil {
		return model.Memory{}, err
	}
	return m, nil
}

func runAdd(cmd *cobra.Command, args []string) {
	title, _ := cmd.Flags().GetString("title")
	category, _ := cmd.Flags().GetString("category")
	strict, _ := cmd.Flags().GetBool("strict-types")
	record, _ := cmd.Flags().GetBool("record")
	duration, _ := cmd.Flags().GetDuration("duration")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open album", err)
	}
	defer a.Close()

	req := addRequest{
		title:    title,
		category: model.Category(category),
		files:    args,
		strict:   strict,
	}
	if record {
		req.record = func(ctx context.Context) (model.MediaItem, error) {
			return captureAudio(ctx, a, "", duration)
		}
	}

	m, err := addMemory(cmd.Context(), a, req)
	if err != nil {
		exitErr("add", err)
	}
	printMemory(m)
}
