package album

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/fondmemory/fond-memory/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validator: %v", err))
	}
	return v
}

// Draft is a memory being composed, before it has an id.
type Draft struct {
	Title    string            `validate:"notblank"`
	Category model.Category    `validate:"oneof=family couple pets legacy"`
	Media    []model.MediaItem `validate:"min=1"`
}

// NewMemory turns a draft into a Memory. An empty category defaults to
// family. A blank title or no media blocks the submission.
func NewMemory(d Draft, now time.Time) (model.Memory, error) {
	if d.Category == "" {
		d.Category = model.CategoryFamily
	}
	if err := validate.Struct(d); err != nil {
		return model.Memory{}, fmt.Errorf("%w: %s", ErrBlockedSubmission, describe(err))
	}

	media := make([]model.MediaItem, len(d.Media))
	copy(media, d.Media)
	return model.Memory{
		ID:        model.NewID(),
		Title:     d.Title,
		Category:  d.Category,
		CreatedAt: now.UnixMilli(),
		Media:     media,
	}, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "notblank":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, "at least one "+field+" item is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
