package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kuntv/service/internal/response"
	"github.com/kuntv/service/internal/storage"
)

// maxUploadMemory bounds how much of a multipart body is buffered in memory;
// the rest spills to disk.
const maxUploadMemory = 32 << 20

// Handler holds HTTP handlers for catalog endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new catalog Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case h.svc.IsNotFound(err):
		response.NotFound(w, "record not found")
	case errors.Is(err, storage.ErrNoCapacity):
		response.Error(w, http.StatusInsufficientStorage, "no storage account has enough free space")
	default:
		log.Printf("catalog: %v", err)
		response.InternalError(w)
	}
}

// saveUpload writes a multipart file part to a private temp directory under
// its original base name, which later becomes the object key. The caller must
// remove the directory.
func saveUpload(part multipart.File, filename string) (dir, path string, err error) {
	dir, err = os.MkdirTemp("", "kuntv-upload-*")
	if err != nil {
		return "", "", fmt.Errorf("create temp dir: %w", err)
	}
	path = filepath.Join(dir, filepath.Base(filename))
	dst, err := os.Create(path)
	if err != nil {
		os.RemoveAll(dir)
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, part); err != nil {
		os.RemoveAll(dir)
		return "", "", fmt.Errorf("write temp file: %w", err)
	}
	return dir, path, nil
}

// readCover returns the bytes of the optional "cover" form part.
func readCover(r *http.Request) ([]byte, error) {
	part, _, err := r.FormFile("cover")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer part.Close()
	return io.ReadAll(part)
}

// --- collections ---

// ListCollections godoc
//
//	@Summary	List collections
//	@Tags		collections
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	response.Envelope{data=[]Collection}
//	@Router		/collections [get]
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.svc.ListCollections(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, collections)
}

// --- sections ---

// ListSections godoc
//
//	@Summary	List sections
//	@Tags		sections
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	response.Envelope{data=[]Section}
//	@Router		/sections [get]
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.svc.ListSections(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, sections)
}

// GetSection godoc
//
//	@Summary	Get a section
//	@Tags		sections
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Section ID"
//	@Success	200	{object}	response.Envelope{data=Section}
//	@Failure	404	{object}	response.Envelope
//	@Router		/sections/{id} [get]
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	section, err := h.svc.GetSection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, section)
}

// CreateSection godoc
//
//	@Summary	Create a section
//	@Tags		sections
//	@Accept		mpfd
//	@Produce	json
//	@Security	BearerAuth
//	@Param		title	formData	string	true	"Title"
//	@Param		year	formData	string	true	"Year"
//	@Param		tags	formData	string	false	"Comma-separated tags"
//	@Param		cover	formData	file	false	"Cover image"
//	@Success	201		{object}	response.Envelope{data=Section}
//	@Failure	400		{object}	response.Envelope
//	@Router		/sections [post]
func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	title := r.FormValue("title")
	if title == "" {
		response.BadRequest(w, "title is required")
		return
	}
	cover, err := readCover(r)
	if err != nil {
		response.BadRequest(w, "invalid cover image")
		return
	}

	section, err := h.svc.CreateSection(r.Context(), CreateSectionInput{
		Title: title,
		Year:  r.FormValue("year"),
		Tags:  splitTags(r.FormValue("tags")),
		Cover: cover,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.Created(w, section)
}

// UpdateSection godoc
//
//	@Summary	Update a section
//	@Tags		sections
//	@Accept		mpfd
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Section ID"
//	@Success	200	{object}	response.Envelope{data=Section}
//	@Failure	404	{object}	response.Envelope
//	@Router		/sections/{id} [patch]
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	cover, err := readCover(r)
	if err != nil {
		response.BadRequest(w, "invalid cover image")
		return
	}

	in := UpdateSectionInput{Cover: cover}
	if v := r.FormValue("title"); v != "" {
		in.Title = &v
	}
	if v := r.FormValue("year"); v != "" {
		in.Year = &v
	}
	if v := r.FormValue("tags"); v != "" {
		in.Tags = splitTags(v)
	}

	section, err := h.svc.UpdateSection(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, section)
}

// DeleteSection godoc
//
//	@Summary	Delete a section with its seasons, videos and stored media
//	@Tags		sections
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Section ID"
//	@Success	200	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Router		/sections/{id} [delete]
func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSection(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, nil)
}

// --- seasons ---

type seasonRequest struct {
	SectionID string `json:"sectionId"`
	Title     string `json:"title"`
	Year      string `json:"year"`
}

// CreateSeason godoc
//
//	@Summary	Create a season
//	@Tags		seasons
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		seasonRequest	true	"Season"
//	@Success	201		{object}	response.Envelope{data=Season}
//	@Failure	400		{object}	response.Envelope
//	@Router		/seasons [post]
func (h *Handler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	var req seasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SectionID == "" || req.Title == "" {
		response.BadRequest(w, "sectionId and title are required")
		return
	}
	season, err := h.svc.CreateSeason(r.Context(), req.SectionID, req.Title, req.Year)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.Created(w, season)
}

// ListSeasons godoc
//
//	@Summary	List seasons of a section
//	@Tags		seasons
//	@Produce	json
//	@Security	BearerAuth
//	@Param		sectionId	query		string	true	"Section ID"
//	@Success	200			{object}	response.Envelope{data=[]Season}
//	@Router		/seasons [get]
func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	sectionID := r.URL.Query().Get("sectionId")
	if sectionID == "" {
		response.BadRequest(w, "sectionId is required")
		return
	}
	seasons, err := h.svc.ListSeasons(r.Context(), sectionID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, seasons)
}

// UpdateSeason godoc
//
//	@Summary	Update a season
//	@Tags		seasons
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Season ID"
//	@Success	200	{object}	response.Envelope{data=Season}
//	@Failure	404	{object}	response.Envelope
//	@Router		/seasons/{id} [patch]
func (h *Handler) UpdateSeason(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title *string `json:"title"`
		Year  *string `json:"year"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	season, err := h.svc.UpdateSeason(r.Context(), chi.URLParam(r, "id"), req.Title, req.Year)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, season)
}

// DeleteSeason godoc
//
//	@Summary	Delete a season with its videos and stored media
//	@Tags		seasons
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Season ID"
//	@Success	200	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Router		/seasons/{id} [delete]
func (h *Handler) DeleteSeason(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSeason(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, nil)
}

// --- videos ---

// ListVideos godoc
//
//	@Summary	List videos with signed playback URLs
//	@Tags		videos
//	@Produce	json
//	@Security	BearerAuth
//	@Param		sectionId	query		string	false	"Filter by section"
//	@Success	200			{object}	response.Envelope{data=[]VideoView}
//	@Router		/videos [get]
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	var (
		videos []VideoView
		err    error
	)
	if sectionID := r.URL.Query().Get("sectionId"); sectionID != "" {
		videos, err = h.svc.ListVideosBySection(r.Context(), sectionID)
	} else {
		videos, err = h.svc.ListVideos(r.Context())
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, videos)
}

// GetVideo godoc
//
//	@Summary	Get a video with a signed playback URL
//	@Tags		videos
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Video ID"
//	@Success	200	{object}	response.Envelope{data=VideoView}
//	@Failure	404	{object}	response.Envelope
//	@Router		/videos/{id} [get]
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	video, err := h.svc.GetVideo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, video)
}

// CreateVideo godoc
//
//	@Summary	Upload a video into a season
//	@Tags		videos
//	@Accept		mpfd
//	@Produce	json
//	@Security	BearerAuth
//	@Param		seasonId	formData	string	true	"Season ID"
//	@Param		title		formData	string	true	"Title"
//	@Param		duration	formData	string	false	"Duration"
//	@Param		file		formData	file	true	"Media file"
//	@Success	201			{object}	response.Envelope{data=Video}
//	@Failure	400			{object}	response.Envelope
//	@Failure	507			{object}	response.Envelope
//	@Router		/videos [post]
func (h *Handler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	seasonID := r.FormValue("seasonId")
	title := r.FormValue("title")
	if seasonID == "" || title == "" {
		response.BadRequest(w, "seasonId and title are required")
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "media file is required")
		return
	}
	defer part.Close()

	dir, path, err := saveUpload(part, header.Filename)
	if err != nil {
		log.Printf("catalog: %v", err)
		response.InternalError(w)
		return
	}
	defer os.RemoveAll(dir)

	video, err := h.svc.CreateVideo(r.Context(), CreateVideoInput{
		SeasonID: seasonID,
		Title:    title,
		Duration: r.FormValue("duration"),
		FilePath: path,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.Created(w, video)
}

// UpdateVideo godoc
//
//	@Summary	Update a video
//	@Tags		videos
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Video ID"
//	@Success	200	{object}	response.Envelope{data=Video}
//	@Failure	404	{object}	response.Envelope
//	@Router		/videos/{id} [patch]
func (h *Handler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    *string `json:"title"`
		Duration *string `json:"duration"`
		SeasonID *string `json:"seasonId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	video, err := h.svc.UpdateVideo(r.Context(), chi.URLParam(r, "id"), UpdateVideoInput{
		Title:    req.Title,
		Duration: req.Duration,
		SeasonID: req.SeasonID,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, video)
}

// DeleteVideo godoc
//
//	@Summary	Delete a video and its stored media
//	@Tags		videos
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Video ID"
//	@Success	200	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Router		/videos/{id} [delete]
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteVideo(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, nil)
}

// --- films ---

// ListFilms godoc
//
//	@Summary	List films with signed playback URLs
//	@Tags		films
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	response.Envelope{data=[]FilmView}
//	@Router		/films [get]
func (h *Handler) ListFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.svc.ListFilms(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, films)
}

// GetFilm godoc
//
//	@Summary	Get a film with a signed playback URL
//	@Tags		films
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Film ID"
//	@Success	200	{object}	response.Envelope{data=FilmView}
//	@Failure	404	{object}	response.Envelope
//	@Router		/films/{id} [get]
func (h *Handler) GetFilm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid film id")
		return
	}
	film, err := h.svc.GetFilm(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, film)
}

// CreateFilm godoc
//
//	@Summary	Upload a film
//	@Tags		films
//	@Accept		mpfd
//	@Produce	json
//	@Security	BearerAuth
//	@Param		title		formData	string	true	"Title"
//	@Param		genre		formData	string	false	"Genre"
//	@Param		duration	formData	string	false	"Duration"
//	@Param		file		formData	file	true	"Media file"
//	@Param		cover		formData	file	false	"Cover image"
//	@Success	201			{object}	response.Envelope{data=Film}
//	@Failure	400			{object}	response.Envelope
//	@Failure	507			{object}	response.Envelope
//	@Router		/films [post]
func (h *Handler) CreateFilm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	title := r.FormValue("title")
	if title == "" {
		response.BadRequest(w, "title is required")
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "media file is required")
		return
	}
	defer part.Close()

	cover, err := readCover(r)
	if err != nil {
		response.BadRequest(w, "invalid cover image")
		return
	}

	dir, path, err := saveUpload(part, header.Filename)
	if err != nil {
		log.Printf("catalog: %v", err)
		response.InternalError(w)
		return
	}
	defer os.RemoveAll(dir)

	film, err := h.svc.CreateFilm(r.Context(), CreateFilmInput{
		Title:    title,
		Genre:    r.FormValue("genre"),
		Duration: r.FormValue("duration"),
		FilePath: path,
		Cover:    cover,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.Created(w, film)
}

// UpdateFilm godoc
//
//	@Summary	Update a film
//	@Tags		films
//	@Accept		mpfd
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Film ID"
//	@Success	200	{object}	response.Envelope{data=Film}
//	@Failure	404	{object}	response.Envelope
//	@Router		/films/{id} [patch]
func (h *Handler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid film id")
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	cover, err := readCover(r)
	if err != nil {
		response.BadRequest(w, "invalid cover image")
		return
	}

	in := UpdateFilmInput{Cover: cover}
	if v := r.FormValue("title"); v != "" {
		in.Title = &v
	}
	if v := r.FormValue("genre"); v != "" {
		in.Genre = &v
	}
	if v := r.FormValue("duration"); v != "" {
		in.Duration = &v
	}

	film, err := h.svc.UpdateFilm(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, film)
}

// DeleteFilm godoc
//
//	@Summary	Delete a film and its stored media
//	@Tags		films
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Film ID"
//	@Success	200	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Router		/films/{id} [delete]
func (h *Handler) DeleteFilm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid film id")
		return
	}
	if err := h.svc.DeleteFilm(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	response.OK(w, nil)
}

// splitTags turns a comma-separated tag string into a trimmed slice.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
