package web

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cinestream/internal/catalog"
	"cinestream/internal/detail"
	"cinestream/internal/form"
	"cinestream/internal/movieapi"
	"cinestream/internal/notice"
)

const (
	loadingText   = "Loading..."
	maxUploadSize = 256 << 20
)

type statusPage struct {
	Message string
	Refresh bool
}

type formModel struct {
	Editing    bool
	Fields     form.Fields
	Categories []string
	Image      string
	Trailer    string
}

type catalogPage struct {
	Snap       catalog.Snapshot
	Categories []string
	Notices    []notice.Notice
	Detail     *detail.Model
	Form       *formModel
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	sh := s.shellFor(r)
	ctx, cancel := context.WithTimeout(r.Context(), s.loadWait)
	defer cancel()
	st, _ := sh.Load(ctx)

	if st.Data == nil {
		if st.Err != "" {
			s.render(w, http.StatusBadGateway, "status", statusPage{Message: st.Err})
			// The next visit remounts the page and fetches again.
			sh.Reload()
			return
		}
		s.render(w, http.StatusOK, "status", statusPage{Message: loadingText, Refresh: true})
		return
	}

	page := catalogPage{
		Snap:       sh.Catalog().Snapshot(),
		Categories: sh.Categories(),
		Notices:    sh.Notices().Drain(),
	}
	if d := sh.Detail(); d != nil {
		m := d.Render(s.api.MediaURL)
		page.Detail = &m
	}
	if f := sh.Form(); f != nil {
		image, trailer := f.Attachments()
		page.Form = &formModel{
			Editing:    f.Editing(),
			Fields:     f.Fields(),
			Categories: form.Categories,
			Image:      image,
			Trailer:    trailer,
		}
	}
	s.render(w, http.StatusOK, "catalog", page)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	s.shellFor(r).New()
	backToCatalog(w, r)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(w, r)
	if !ok {
		return
	}
	s.shellFor(r).View(id)
	backToCatalog(w, r)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(w, r)
	if !ok {
		return
	}
	s.shellFor(r).Edit(id)
	backToCatalog(w, r)
}

func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(w, r)
	if !ok {
		return
	}
	s.shellFor(r).RequestDelete(id)
	backToCatalog(w, r)
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	// Failures are logged by the shell and leave the list as it was.
	_ = s.shellFor(r).ConfirmDelete(r.Context())
	backToCatalog(w, r)
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	_ = s.shellFor(r).CancelDelete()
	backToCatalog(w, r)
}

func (s *Server) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	s.shellFor(r).Close()
	backToCatalog(w, r)
}

func (s *Server) handleToggleTrailer(w http.ResponseWriter, r *http.Request) {
	if d := s.shellFor(r).Detail(); d != nil {
		d.ToggleTrailer()
	}
	backToCatalog(w, r)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	stars, err := strconv.Atoi(r.PostFormValue("stars"))
	if err != nil {
		http.Error(w, "invalid rating", http.StatusBadRequest)
		return
	}
	// Failures reach the page as a notice.
	if err := s.shellFor(r).Rate(r.Context(), stars); err != nil {
		s.log.Info().Err(err).Int("stars", stars).Msg("rating not applied")
	}
	backToCatalog(w, r)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	fields := form.Fields{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		IsLatest:    r.FormValue("is_latest") == "true",
	}
	image, err := readAttachment(r, "image")
	if err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	trailer, err := readAttachment(r, "trailer")
	if err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	if err := s.shellFor(r).Save(r.Context(), fields, image, trailer); err != nil {
		s.log.Info().Err(err).Msg("save not applied")
	}
	backToCatalog(w, r)
}

func (s *Server) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	s.shellFor(r).Catalog().ToggleCategory(r.PostFormValue("name"))
	backToCatalog(w, r)
}

func movieID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid movie id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// readAttachment returns nil when the field carries no file.
func readAttachment(r *http.Request, field string) (*movieapi.Attachment, error) {
	file, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &movieapi.Attachment{
		Filename:    hdr.Filename,
		ContentType: contentType(hdr),
		Data:        data,
	}, nil
}

func contentType(hdr *multipart.FileHeader) string {
	if hdr == nil {
		return ""
	}
	return hdr.Header.Get("Content-Type")
}
