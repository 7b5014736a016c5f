// Package form is the create/edit movie modal.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"cinestream/internal/movieapi"
	"cinestream/internal/notice"
)

var (
	ErrMissingFields    = errors.New("form: title, description and category are required")
	ErrUnsupportedMedia = errors.New("form: unsupported media type")
)

const (
	MissingFieldsText = "Please fill in all required fields!"
	UpdatedText       = "🎬 Movie updated successfully!"
	CreatedText       = "🎥 New movie added successfully!"
	UpdateFailedText  = "Failed to update movie!"
	CreateFailedText  = "Failed to create movie!"
)

// Categories offered by the category picker.
var Categories = []string{"thriller", "romantic", "action", "comedy", "webseries", "drama"}

type Saver interface {
	CreateMovie(ctx context.Context, cred movieapi.Credential, in movieapi.MovieInput) (*movieapi.Movie, error)
	UpdateMovie(ctx context.Context, cred movieapi.Credential, id int, in movieapi.MovieInput) (*movieapi.Movie, error)
}

type Fields struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
	IsLatest    bool
}

type Kind int

const (
	Poster Kind = iota
	Trailer
)

func (k Kind) prefix() string {
	if k == Trailer {
		return "video/"
	}
	return "image/"
}

type Options struct {
	CloseDelay time.Duration
	OnCreated  func(movieapi.Movie)
	OnUpdated  func(movieapi.Movie)
	OnClose    func()
	Logger     zerolog.Logger
}

type Form struct {
	api      Saver
	opts     Options
	log      zerolog.Logger
	validate *validator.Validate

	mu         sync.Mutex
	movie      movieapi.Movie
	fields     Fields
	image      *movieapi.Attachment
	trailer    *movieapi.Attachment
	saving     bool
	closeTimer *time.Timer
	closed     bool
}

// New opens the form. A movie with an id is edited and prefilled, anything
// else starts a blank create form.
func New(api Saver, movie movieapi.Movie, opts Options) *Form {
	f := &Form{
		api:      api,
		opts:     opts,
		log:      opts.Logger.With().Str("component", "form").Int("movie_id", movie.ID).Logger(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		movie:    movie,
	}
	if movie.ID != 0 {
		f.fields = Fields{
			Title:       movie.Title,
			Description: movie.Description,
			Category:    movie.Category,
			IsLatest:    movie.IsLatest,
		}
	}
	return f
}

func (f *Form) Editing() bool { return f.movie.ID != 0 }

func (f *Form) Movie() movieapi.Movie { return f.movie }

func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *Form) Saving() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saving
}

// Attach accepts a dropped or picked file when its type matches the slot:
// image/* for the poster, video/* for the trailer. Anything else is ignored
// with ErrUnsupportedMedia.
func (f *Form) Attach(kind Kind, a movieapi.Attachment) error {
	a.ContentType = DetectType(a.ContentType, a.Data)
	if !strings.HasPrefix(a.ContentType, kind.prefix()) {
		return fmt.Errorf("%w: %s", ErrUnsupportedMedia, a.ContentType)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if kind == Trailer {
		f.trailer = &a
	} else {
		f.image = &a
	}
	return nil
}

func (f *Form) Attachments() (image, trailer string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.image != nil {
		image = f.image.Filename
	}
	if f.trailer != nil {
		trailer = f.trailer.Filename
	}
	return image, trailer
}

// Submit validates the fields and creates or updates the movie. On success
// the record is reported upward and the form closes after CloseDelay.
func (f *Form) Submit(ctx context.Context, cred movieapi.Credential, in Fields) (notice.Notice, error) {
	in = Fields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		IsLatest:    in.IsLatest,
	}

	f.mu.Lock()
	f.fields = in
	if err := f.validate.Struct(in); err != nil {
		f.mu.Unlock()
		return notice.Failure(MissingFieldsText), ErrMissingFields
	}
	f.saving = true
	input := movieapi.MovieInput{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		IsLatest:    in.IsLatest,
		Image:       f.image,
		Trailer:     f.trailer,
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.saving = false
		f.mu.Unlock()
	}()

	if f.Editing() {
		saved, err := f.api.UpdateMovie(ctx, cred, f.movie.ID, input)
		if err != nil {
			f.log.Warn().Err(err).Msg("update failed")
			return notice.Failure(UpdateFailedText), fmt.Errorf("update movie %d: %w", f.movie.ID, err)
		}
		if f.opts.OnUpdated != nil {
			f.opts.OnUpdated(*saved)
		}
		f.scheduleClose()
		return notice.Successf(UpdatedText), nil
	}

	saved, err := f.api.CreateMovie(ctx, cred, input)
	if err != nil {
		f.log.Warn().Err(err).Msg("create failed")
		return notice.Failure(CreateFailedText), fmt.Errorf("create movie: %w", err)
	}
	if f.opts.OnCreated != nil {
		f.opts.OnCreated(*saved)
	}
	f.scheduleClose()
	return notice.Successf(CreatedText), nil
}

func (f *Form) scheduleClose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if f.closeTimer != nil {
		f.closeTimer.Stop()
	}
	f.closeTimer = time.AfterFunc(f.opts.CloseDelay, f.fireClose)
}

func (f *Form) fireClose() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.closeTimer = nil
	f.mu.Unlock()
	if f.opts.OnClose != nil {
		f.opts.OnClose()
	}
}

// Close dismisses the form and cancels a pending delayed close.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.closeTimer != nil {
		f.closeTimer.Stop()
		f.closeTimer = nil
	}
}

// DetectType trusts a specific declared MIME type and sniffs the content when
// the declared type is missing or generic.
func DetectType(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if len(data) == 0 {
		return declared
	}
	return mimetype.Detect(data).String()
}
