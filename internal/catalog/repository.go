package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles all catalog database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// --- collections ---

// GetCollectionByType fetches the collection for a content type.
func (r *Repository) GetCollectionByType(ctx context.Context, typ string) (*Collection, error) {
	c := &Collection{}
	err := r.db.QueryRow(ctx,
		`SELECT id, type, created_at FROM collections WHERE type = $1`,
		typ,
	).Scan(&c.ID, &c.Type, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get collection by type: %w", err)
	}
	return c, nil
}

// CreateCollection inserts a collection for a content type.
func (r *Repository) CreateCollection(ctx context.Context, typ string) (*Collection, error) {
	c := &Collection{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO collections (type) VALUES ($1)
		 RETURNING id, type, created_at`,
		typ,
	).Scan(&c.ID, &c.Type, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return c, nil
}

// ListCollections returns all collections.
func (r *Repository) ListCollections(ctx context.Context) ([]Collection, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, type, created_at FROM collections ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var out []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// --- sections ---

// CreateSection inserts a new section.
func (r *Repository) CreateSection(ctx context.Context, s *Section) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO sections (title, year, tags, cover_url, collection_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.Title, s.Year, s.Tags, s.CoverURL, s.CollectionID,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// GetSection fetches a section by ID.
func (r *Repository) GetSection(ctx context.Context, id string) (*Section, error) {
	s := &Section{}
	err := r.db.QueryRow(ctx,
		`SELECT id, title, year, tags, cover_url, collection_id, created_at
		 FROM sections WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Title, &s.Year, &s.Tags, &s.CoverURL, &s.CollectionID, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get section: %w", err)
	}
	return s, nil
}

// ListSections returns all sections, newest first.
func (r *Repository) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, year, tags, cover_url, collection_id, created_at
		 FROM sections ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var out []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.Title, &s.Year, &s.Tags, &s.CoverURL, &s.CollectionID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSection persists mutable section fields.
func (r *Repository) UpdateSection(ctx context.Context, s *Section) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sections SET title = $2, year = $3, tags = $4, cover_url = $5
		 WHERE id = $1`,
		s.ID, s.Title, s.Year, s.Tags, s.CoverURL)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSection removes a section row. Seasons and videos must be removed
// first so their stored media can be cleaned up.
func (r *Repository) DeleteSection(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- seasons ---

// CreateSeason inserts a new season.
func (r *Repository) CreateSeason(ctx context.Context, s *Season) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO seasons (title, year, section_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.Title, s.Year, s.SectionID,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create season: %w", err)
	}
	return nil
}

// GetSeason fetches a season by ID.
func (r *Repository) GetSeason(ctx context.Context, id string) (*Season, error) {
	s := &Season{}
	err := r.db.QueryRow(ctx,
		`SELECT id, title, year, section_id, created_at FROM seasons WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Title, &s.Year, &s.SectionID, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get season: %w", err)
	}
	return s, nil
}

// ListSeasonsBySection returns the seasons of a section.
func (r *Repository) ListSeasonsBySection(ctx context.Context, sectionID string) ([]Season, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, year, section_id, created_at
		 FROM seasons WHERE section_id = $1 ORDER BY title`,
		sectionID)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	var out []Season
	for rows.Next() {
		var s Season
		if err := rows.Scan(&s.ID, &s.Title, &s.Year, &s.SectionID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSeason persists mutable season fields.
func (r *Repository) UpdateSeason(ctx context.Context, s *Season) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE seasons SET title = $2, year = $3 WHERE id = $1`,
		s.ID, s.Title, s.Year)
	if err != nil {
		return fmt.Errorf("update season: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSeason removes a season row.
func (r *Repository) DeleteSeason(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM seasons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete season: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- videos ---

// CreateVideo inserts a new video row referencing its stored media.
func (r *Repository) CreateVideo(ctx context.Context, v *Video) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO videos (title, duration, file_link, section_id, season_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, uploaded_at`,
		v.Title, v.Duration, v.FileLink, v.SectionID, v.SeasonID,
	).Scan(&v.ID, &v.UploadedAt)
	if err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

// GetVideo fetches a video with its section and season titles.
func (r *Repository) GetVideo(ctx context.Context, id string) (*Video, string, *string, error) {
	v := &Video{}
	var sectionTitle string
	var seasonTitle *string
	err := r.db.QueryRow(ctx,
		`SELECT v.id, v.title, v.duration, v.file_link, v.uploaded_at,
		        v.section_id, v.season_id, sec.title, sea.title
		 FROM videos v
		 JOIN sections sec ON sec.id = v.section_id
		 LEFT JOIN seasons sea ON sea.id = v.season_id
		 WHERE v.id = $1`,
		id,
	).Scan(&v.ID, &v.Title, &v.Duration, &v.FileLink, &v.UploadedAt,
		&v.SectionID, &v.SeasonID, &sectionTitle, &seasonTitle)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", nil, ErrNotFound
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("get video: %w", err)
	}
	return v, sectionTitle, seasonTitle, nil
}

// videoListQuery is shared by the video listing variants.
const videoListQuery = `
	SELECT v.id, v.title, v.duration, v.file_link, v.uploaded_at,
	       v.section_id, v.season_id, sec.title, sea.title
	FROM videos v
	JOIN sections sec ON sec.id = v.section_id
	LEFT JOIN seasons sea ON sea.id = v.season_id`

func (r *Repository) queryVideos(ctx context.Context, query string, args ...any) ([]Video, []string, []*string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []Video
	var sectionTitles []string
	var seasonTitles []*string
	for rows.Next() {
		var v Video
		var sectionTitle string
		var seasonTitle *string
		if err := rows.Scan(&v.ID, &v.Title, &v.Duration, &v.FileLink, &v.UploadedAt,
			&v.SectionID, &v.SeasonID, &sectionTitle, &seasonTitle); err != nil {
			return nil, nil, nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
		sectionTitles = append(sectionTitles, sectionTitle)
		seasonTitles = append(seasonTitles, seasonTitle)
	}
	return videos, sectionTitles, seasonTitles, rows.Err()
}

// ListVideos returns all videos with their section/season titles.
func (r *Repository) ListVideos(ctx context.Context) ([]Video, []string, []*string, error) {
	return r.queryVideos(ctx, videoListQuery+` ORDER BY v.uploaded_at DESC`)
}

// ListVideosBySection returns a section's videos.
func (r *Repository) ListVideosBySection(ctx context.Context, sectionID string) ([]Video, []string, []*string, error) {
	return r.queryVideos(ctx, videoListQuery+` WHERE v.section_id = $1 ORDER BY v.uploaded_at DESC`, sectionID)
}

// ListVideosBySeason returns a season's videos.
func (r *Repository) ListVideosBySeason(ctx context.Context, seasonID string) ([]Video, []string, []*string, error) {
	return r.queryVideos(ctx, videoListQuery+` WHERE v.season_id = $1 ORDER BY v.uploaded_at DESC`, seasonID)
}

// UpdateVideo persists mutable video fields.
func (r *Repository) UpdateVideo(ctx context.Context, v *Video) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE videos SET title = $2, duration = $3, season_id = $4 WHERE id = $1`,
		v.ID, v.Title, v.Duration, v.SeasonID)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVideo removes a video row.
func (r *Repository) DeleteVideo(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- films ---

// CreateFilm inserts a new film row referencing its stored media.
func (r *Repository) CreateFilm(ctx context.Context, f *Film) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO films (title, genre, duration, video_url, cover_url, collection_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		f.Title, f.Genre, f.Duration, f.VideoURL, f.CoverURL, f.CollectionID,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("create film: %w", err)
	}
	return nil
}

// GetFilm fetches a film by ID.
func (r *Repository) GetFilm(ctx context.Context, id int64) (*Film, error) {
	f := &Film{}
	err := r.db.QueryRow(ctx,
		`SELECT id, title, genre, duration, video_url, cover_url, collection_id, created_at
		 FROM films WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.Title, &f.Genre, &f.Duration, &f.VideoURL, &f.CoverURL, &f.CollectionID, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get film: %w", err)
	}
	return f, nil
}

// ListFilms returns all films, newest first.
func (r *Repository) ListFilms(ctx context.Context) ([]Film, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, genre, duration, video_url, cover_url, collection_id, created_at
		 FROM films ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	defer rows.Close()

	var out []Film
	for rows.Next() {
		var f Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Genre, &f.Duration, &f.VideoURL, &f.CoverURL, &f.CollectionID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpdateFilm persists mutable film fields.
func (r *Repository) UpdateFilm(ctx context.Context, f *Film) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE films SET title = $2, genre = $3, duration = $4, cover_url = $5 WHERE id = $1`,
		f.ID, f.Title, f.Genre, f.Duration, f.CoverURL)
	if err != nil {
		return fmt.Errorf("update film: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFilm removes a film row.
func (r *Repository) DeleteFilm(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM films WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete film: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
