package catalog

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags(""))
	assert.Equal(t, []string{"anime"}, splitTags("anime"))
	assert.Equal(t, []string{"anime", "action"}, splitTags(" anime , action ,, "))
}

func TestSaveUploadKeepsOriginalBaseName(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "video.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(maxUploadMemory))

	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	defer file.Close()

	dir, path, err := saveUpload(file, header.Filename)
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	// The base name becomes the object key on upload, so it must survive.
	assert.Equal(t, "video.mp4", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestCreateSeasonRejectsMissingFields(t *testing.T) {
	h := NewHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/seasons", strings.NewReader(`{"title":"S1"}`))
	rec := httptest.NewRecorder()

	h.CreateSeason(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateVideoRejectsMissingFile(t *testing.T) {
	h := NewHandler(nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("seasonId", "abc"))
	require.NoError(t, mw.WriteField("title", "Episode 1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/videos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.CreateVideo(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFilmRejectsNonNumericID(t *testing.T) {
	h := NewHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/films/abc", nil)
	rec := httptest.NewRecorder()

	h.GetFilm(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
