package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/kuntv/service/internal/storage"
)

// MediaStore is the object storage surface the catalog drives: placement
// upload, per-read signing, and cleanup.
type MediaStore interface {
	SelectAndUpload(ctx context.Context, path string, size int64) (string, error)
	SignedURL(ctx context.Context, canonicalURL string) (*storage.SignedAccess, error)
	Delete(ctx context.Context, canonicalURL string) error
}

// CoverHost uploads a cover image and returns its public URL.
type CoverHost interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// VideoEncoder compresses a video file before upload, returning the path of
// the file to upload (possibly the input when compression is skipped).
type VideoEncoder interface {
	Compress(ctx context.Context, path string) (string, error)
}

// Store is the persistence surface the service works against. *Repository is
// the production implementation.
type Store interface {
	GetCollectionByType(ctx context.Context, typ string) (*Collection, error)
	CreateCollection(ctx context.Context, typ string) (*Collection, error)
	ListCollections(ctx context.Context) ([]Collection, error)

	CreateSection(ctx context.Context, s *Section) error
	GetSection(ctx context.Context, id string) (*Section, error)
	ListSections(ctx context.Context) ([]Section, error)
	UpdateSection(ctx context.Context, s *Section) error
	DeleteSection(ctx context.Context, id string) error

	CreateSeason(ctx context.Context, s *Season) error
	GetSeason(ctx context.Context, id string) (*Season, error)
	ListSeasonsBySection(ctx context.Context, sectionID string) ([]Season, error)
	UpdateSeason(ctx context.Context, s *Season) error
	DeleteSeason(ctx context.Context, id string) error

	CreateVideo(ctx context.Context, v *Video) error
	GetVideo(ctx context.Context, id string) (*Video, string, *string, error)
	ListVideos(ctx context.Context) ([]Video, []string, []*string, error)
	ListVideosBySection(ctx context.Context, sectionID string) ([]Video, []string, []*string, error)
	ListVideosBySeason(ctx context.Context, seasonID string) ([]Video, []string, []*string, error)
	UpdateVideo(ctx context.Context, v *Video) error
	DeleteVideo(ctx context.Context, id string) error

	CreateFilm(ctx context.Context, f *Film) error
	GetFilm(ctx context.Context, id int64) (*Film, error)
	ListFilms(ctx context.Context) ([]Film, error)
	UpdateFilm(ctx context.Context, f *Film) error
	DeleteFilm(ctx context.Context, id int64) error
}

// Service contains the catalog business logic. Media uploads go through
// placement, reads exchange canonical URLs for signed ones, and deletes clean
// up the stored objects.
type Service struct {
	repo    Store
	media   MediaStore
	covers  CoverHost
	encoder VideoEncoder // nil disables transcoding
}

// NewService creates a new catalog Service.
func NewService(repo Store, media MediaStore, covers CoverHost, encoder VideoEncoder) *Service {
	return &Service{repo: repo, media: media, covers: covers, encoder: encoder}
}

// IsNotFound returns true when the error indicates a missing catalog record.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ensureCollection returns the collection for typ, creating it on first use.
func (s *Service) ensureCollection(ctx context.Context, typ string) (*Collection, error) {
	c, err := s.repo.GetCollectionByType(ctx, typ)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.repo.CreateCollection(ctx, typ)
}

// ListCollections returns all collections.
func (s *Service) ListCollections(ctx context.Context) ([]Collection, error) {
	return s.repo.ListCollections(ctx)
}

// --- sections ---

// CreateSectionInput carries the fields for a new section.
type CreateSectionInput struct {
	Title string
	Year  string
	Tags  []string
	Cover []byte // raw image bytes, optional
}

// CreateSection creates a section inside the series collection, uploading its
// cover image to the image host first.
func (s *Service) CreateSection(ctx context.Context, in CreateSectionInput) (*Section, error) {
	collection, err := s.ensureCollection(ctx, TypeSeries)
	if err != nil {
		return nil, err
	}

	section := &Section{
		Title:        in.Title,
		Year:         in.Year,
		Tags:         in.Tags,
		CollectionID: collection.ID,
	}
	if len(in.Cover) > 0 {
		coverURL, err := s.covers.Upload(ctx, in.Cover)
		if err != nil {
			return nil, fmt.Errorf("upload cover image: %w", err)
		}
		section.CoverURL = coverURL
	}

	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// GetSection fetches a section by ID.
func (s *Service) GetSection(ctx context.Context, id string) (*Section, error) {
	return s.repo.GetSection(ctx, id)
}

// ListSections returns all sections.
func (s *Service) ListSections(ctx context.Context) ([]Section, error) {
	return s.repo.ListSections(ctx)
}

// UpdateSectionInput carries partial section updates; nil fields are kept.
type UpdateSectionInput struct {
	Title *string
	Year  *string
	Tags  []string
	Cover []byte
}

// UpdateSection applies the provided fields to a section. A new cover image
// replaces the hosted URL only after the upload succeeds.
func (s *Service) UpdateSection(ctx context.Context, id string, in UpdateSectionInput) (*Section, error) {
	section, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		section.Title = *in.Title
	}
	if in.Year != nil {
		section.Year = *in.Year
	}
	if in.Tags != nil {
		section.Tags = in.Tags
	}
	if len(in.Cover) > 0 {
		coverURL, err := s.covers.Upload(ctx, in.Cover)
		if err != nil {
			return nil, fmt.Errorf("upload cover image: %w", err)
		}
		section.CoverURL = coverURL
	}

	if err := s.repo.UpdateSection(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// DeleteSection removes a section with all its seasons and videos, including
// the stored media behind every video.
func (s *Service) DeleteSection(ctx context.Context, id string) error {
	if _, err := s.repo.GetSection(ctx, id); err != nil {
		return err
	}

	videos, _, _, err := s.repo.ListVideosBySection(ctx, id)
	if err != nil {
		return err
	}
	for _, v := range videos {
		if err := s.deleteVideoRecord(ctx, &v); err != nil {
			return err
		}
	}

	seasons, err := s.repo.ListSeasonsBySection(ctx, id)
	if err != nil {
		return err
	}
	for _, season := range seasons {
		if err := s.repo.DeleteSeason(ctx, season.ID); err != nil {
			return err
		}
	}

	return s.repo.DeleteSection(ctx, id)
}

// --- seasons ---

// CreateSeason creates a season inside a section.
func (s *Service) CreateSeason(ctx context.Context, sectionID, title, year string) (*Season, error) {
	if _, err := s.repo.GetSection(ctx, sectionID); err != nil {
		return nil, err
	}
	season := &Season{Title: title, Year: year, SectionID: sectionID}
	if err := s.repo.CreateSeason(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}

// GetSeason fetches a season by ID.
func (s *Service) GetSeason(ctx context.Context, id string) (*Season, error) {
	return s.repo.GetSeason(ctx, id)
}

// ListSeasons returns the seasons of a section.
func (s *Service) ListSeasons(ctx context.Context, sectionID string) ([]Season, error) {
	return s.repo.ListSeasonsBySection(ctx, sectionID)
}

// UpdateSeason applies the provided fields to a season.
func (s *Service) UpdateSeason(ctx context.Context, id string, title, year *string) (*Season, error) {
	season, err := s.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		season.Title = *title
	}
	if year != nil {
		season.Year = *year
	}
	if err := s.repo.UpdateSeason(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}

// DeleteSeason removes a season and its videos, including stored media.
func (s *Service) DeleteSeason(ctx context.Context, id string) error {
	if _, err := s.repo.GetSeason(ctx, id); err != nil {
		return err
	}
	videos, _, _, err := s.repo.ListVideosBySeason(ctx, id)
	if err != nil {
		return err
	}
	for _, v := range videos {
		if err := s.deleteVideoRecord(ctx, &v); err != nil {
			return err
		}
	}
	return s.repo.DeleteSeason(ctx, id)
}

// --- videos ---

// CreateVideoInput carries the fields for a new video upload.
type CreateVideoInput struct {
	SeasonID string
	Title    string
	Duration string
	FilePath string // local temp file from the upload handler
}

// CreateVideo transcodes (when enabled) and places the media file, then
// persists the video record with the canonical URL. If the record write
// fails, the freshly uploaded object is deleted again so no orphan remains.
func (s *Service) CreateVideo(ctx context.Context, in CreateVideoInput) (*Video, error) {
	season, err := s.repo.GetSeason(ctx, in.SeasonID)
	if err != nil {
		return nil, err
	}

	canonicalURL, err := s.uploadMedia(ctx, in.FilePath)
	if err != nil {
		return nil, err
	}

	video := &Video{
		Title:     in.Title,
		Duration:  in.Duration,
		FileLink:  canonicalURL,
		SectionID: season.SectionID,
		SeasonID:  &season.ID,
	}
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		s.compensateUpload(ctx, canonicalURL)
		return nil, err
	}
	return video, nil
}

// uploadMedia runs the optional encoder and places the resulting file. The
// declared size is measured after transcoding, since that is what lands in
// the account.
func (s *Service) uploadMedia(ctx context.Context, path string) (string, error) {
	uploadPath := path
	if s.encoder != nil {
		compressed, err := s.encoder.Compress(ctx, path)
		if err != nil {
			return "", fmt.Errorf("transcode media: %w", err)
		}
		uploadPath = compressed
	}

	info, err := os.Stat(uploadPath)
	if err != nil {
		return "", fmt.Errorf("stat media file: %w", err)
	}
	return s.media.SelectAndUpload(ctx, uploadPath, info.Size())
}

// compensateUpload removes an uploaded object after a failed catalog write.
// Failure here only logs: the record write error is the one the caller needs.
func (s *Service) compensateUpload(ctx context.Context, canonicalURL string) {
	if err := s.media.Delete(ctx, canonicalURL); err != nil {
		log.Printf("catalog: orphaned object %s not cleaned up: %v", canonicalURL, err)
	}
}

// GetVideo returns a video with a fresh signed playback URL.
func (s *Service) GetVideo(ctx context.Context, id string) (*VideoView, error) {
	video, sectionTitle, seasonTitle, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.videoView(ctx, video, sectionTitle, seasonTitle)
}

// ListVideos returns all videos with fresh signed playback URLs.
func (s *Service) ListVideos(ctx context.Context) ([]VideoView, error) {
	videos, sectionTitles, seasonTitles, err := s.repo.ListVideos(ctx)
	if err != nil {
		return nil, err
	}
	return s.videoViews(ctx, videos, sectionTitles, seasonTitles)
}

// ListVideosBySection returns a section's videos with signed playback URLs.
func (s *Service) ListVideosBySection(ctx context.Context, sectionID string) ([]VideoView, error) {
	videos, sectionTitles, seasonTitles, err := s.repo.ListVideosBySection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	return s.videoViews(ctx, videos, sectionTitles, seasonTitles)
}

func (s *Service) videoViews(ctx context.Context, videos []Video, sectionTitles []string, seasonTitles []*string) ([]VideoView, error) {
	views := make([]VideoView, 0, len(videos))
	for i := range videos {
		view, err := s.videoView(ctx, &videos[i], sectionTitles[i], seasonTitles[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// videoView signs the video's canonical URL. A signing failure fails the
// read; the canonical URL is never handed out as a fallback.
func (s *Service) videoView(ctx context.Context, v *Video, sectionTitle string, seasonTitle *string) (*VideoView, error) {
	access, err := s.media.SignedURL(ctx, v.FileLink)
	if err != nil {
		return nil, fmt.Errorf("sign video %s: %w", v.ID, err)
	}
	return &VideoView{
		Video:        *v,
		SectionTitle: sectionTitle,
		SeasonTitle:  seasonTitle,
		PlaybackURL:  access.URL,
		ExpiresAt:    access.ExpiresAt,
	}, nil
}

// UpdateVideoInput carries partial video updates; nil fields are kept.
type UpdateVideoInput struct {
	Title    *string
	Duration *string
	SeasonID *string
}

// UpdateVideo applies the provided fields to a video. Moving it to another
// season re-binds the section as well.
func (s *Service) UpdateVideo(ctx context.Context, id string, in UpdateVideoInput) (*Video, error) {
	video, _, _, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		video.Title = *in.Title
	}
	if in.Duration != nil {
		video.Duration = *in.Duration
	}
	if in.SeasonID != nil {
		season, err := s.repo.GetSeason(ctx, *in.SeasonID)
		if err != nil {
			return nil, err
		}
		video.SeasonID = &season.ID
		video.SectionID = season.SectionID
	}
	if err := s.repo.UpdateVideo(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// DeleteVideo removes a video and its stored media.
func (s *Service) DeleteVideo(ctx context.Context, id string) error {
	video, _, _, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return err
	}
	return s.deleteVideoRecord(ctx, video)
}

// deleteVideoRecord removes the stored object first, then the row. Object
// deletion is idempotent, so a retry after a failed row delete is safe.
func (s *Service) deleteVideoRecord(ctx context.Context, v *Video) error {
	if err := s.media.Delete(ctx, v.FileLink); err != nil {
		return fmt.Errorf("delete media for video %s: %w", v.ID, err)
	}
	return s.repo.DeleteVideo(ctx, v.ID)
}

// --- films ---

// CreateFilmInput carries the fields for a new film upload.
type CreateFilmInput struct {
	Title    string
	Genre    string
	Duration string
	FilePath string
	Cover    []byte // optional
}

// CreateFilm places the film's media and persists the record inside the film
// collection, compensating the upload if the record write fails.
func (s *Service) CreateFilm(ctx context.Context, in CreateFilmInput) (*Film, error) {
	collection, err := s.ensureCollection(ctx, TypeFilm)
	if err != nil {
		return nil, err
	}

	film := &Film{
		Title:        in.Title,
		Genre:        in.Genre,
		Duration:     in.Duration,
		CollectionID: collection.ID,
	}
	if len(in.Cover) > 0 {
		coverURL, err := s.covers.Upload(ctx, in.Cover)
		if err != nil {
			return nil, fmt.Errorf("upload cover image: %w", err)
		}
		film.CoverURL = coverURL
	}

	canonicalURL, err := s.uploadMedia(ctx, in.FilePath)
	if err != nil {
		return nil, err
	}
	film.VideoURL = canonicalURL

	if err := s.repo.CreateFilm(ctx, film); err != nil {
		s.compensateUpload(ctx, canonicalURL)
		return nil, err
	}
	return film, nil
}

// GetFilm returns a film with a fresh signed playback URL.
func (s *Service) GetFilm(ctx context.Context, id int64) (*FilmView, error) {
	film, err := s.repo.GetFilm(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.filmView(ctx, film)
}

// ListFilms returns all films with fresh signed playback URLs.
func (s *Service) ListFilms(ctx context.Context) ([]FilmView, error) {
	films, err := s.repo.ListFilms(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]FilmView, 0, len(films))
	for i := range films {
		view, err := s.filmView(ctx, &films[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *Service) filmView(ctx context.Context, f *Film) (*FilmView, error) {
	access, err := s.media.SignedURL(ctx, f.VideoURL)
	if err != nil {
		return nil, fmt.Errorf("sign film %d: %w", f.ID, err)
	}
	return &FilmView{Film: *f, PlaybackURL: access.URL, ExpiresAt: access.ExpiresAt}, nil
}

// UpdateFilmInput carries partial film updates; nil fields are kept.
type UpdateFilmInput struct {
	Title    *string
	Genre    *string
	Duration *string
	Cover    []byte
}

// UpdateFilm applies the provided fields to a film.
func (s *Service) UpdateFilm(ctx context.Context, id int64, in UpdateFilmInput) (*Film, error) {
	film, err := s.repo.GetFilm(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		film.Title = *in.Title
	}
	if in.Genre != nil {
		film.Genre = *in.Genre
	}
	if in.Duration != nil {
		film.Duration = *in.Duration
	}
	if len(in.Cover) > 0 {
		coverURL, err := s.covers.Upload(ctx, in.Cover)
		if err != nil {
			return nil, fmt.Errorf("upload cover image: %w", err)
		}
		film.CoverURL = coverURL
	}
	if err := s.repo.UpdateFilm(ctx, film); err != nil {
		return nil, err
	}
	return film, nil
}

// DeleteFilm removes a film and its stored media.
func (s *Service) DeleteFilm(ctx context.Context, id int64) error {
	film, err := s.repo.GetFilm(ctx, id)
	if err != nil {
		return err
	}
	if err := s.media.Delete(ctx, film.VideoURL); err != nil {
		return fmt.Errorf("delete media for film %d: %w", film.ID, err)
	}
	return s.repo.DeleteFilm(ctx, id)
}
