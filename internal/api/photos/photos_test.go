package photos

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/storage"
	"github.com/Conversly/tripshare/internal/testutil"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router  *gin.Engine
	store   *testutil.MemStore
	files   *storage.PhotoStore
	workers *WorkerPool
	tokens  *shared.TokenManager
	jane    *types.User
	trip    *types.Trip
	token   string
}

func setup(t *testing.T, maxBytes int64) *fixture {
	store := testutil.NewMemStore()
	tokens := testutil.NewTokens(t)
	files, err := storage.NewPhotoStore(t.TempDir())
	require.NoError(t, err)

	r := testutil.NewEngine(t)
	workers := RegisterRoutes(r.Group("/api/v1"), store, files, tokens, Options{
		Workers:        2,
		QueueCapacity:  10,
		MaxUploadBytes: maxBytes,
	})
	t.Cleanup(func() { workers.Stop(context.Background()) })

	jane := store.AddUser("jane")
	return &fixture{
		router:  r,
		store:   store,
		files:   files,
		workers: workers,
		tokens:  tokens,
		jane:    jane,
		trip:    store.AddTrip(jane.ID, "Kyoto", types.VisibilityPublic),
		token:   testutil.Token(t, tokens, jane),
	}
}

func upload(f *fixture, token, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, _ := mw.CreatePart(h)
	part.Write(data)
	mw.WriteField("caption", "  Fushimi Inari at dawn ")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/"+f.trip.ID.String()+"/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func waitForStatus(t *testing.T, f *fixture, id uuid.UUID, status types.PhotoStatus) *types.Photo {
	t.Helper()
	var photo *types.Photo
	require.Eventually(t, func() bool {
		p, err := f.store.GetPhoto(context.Background(), id)
		if err != nil {
			return false
		}
		photo = p
		return p.Status == status
	}, 2*time.Second, 10*time.Millisecond)
	return photo
}

func TestUploadStoresPhoto(t *testing.T) {
	f := setup(t, 1024)
	data := []byte("\xff\xd8\xff pretend jpeg")

	w := upload(f, f.token, "torii.JPG", "image/jpeg", data)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	queued := testutil.Decode[types.Photo](t, w)
	assert.Equal(t, types.PhotoPending, queued.Status)
	assert.Equal(t, "Fushimi Inari at dawn", queued.Caption)
	assert.Equal(t, int64(len(data)), queued.SizeBytes)

	photo := waitForStatus(t, f, queued.ID, types.PhotoReady)
	want := storage.CanonicalPath(f.jane.ID, f.trip.ID, queued.ID, ".jpg")
	assert.Equal(t, want, photo.StoragePath)
	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), photo.Checksum)

	w = testutil.Do(f.router, http.MethodGet, "/api/v1/photos/"+queued.ID.String()+"/file", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, data, w.Body.Bytes())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, `"`+photo.Checksum+`"`, w.Header().Get("ETag"))

	entries, err := os.ReadDir(filepath.Join(f.files.Root(), "staging"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadContentTypeFromFilename(t *testing.T) {
	f := setup(t, 1024)

	w := upload(f, f.token, "harbour.webp", "application/octet-stream", []byte("webp"))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "image/webp", testutil.Decode[types.Photo](t, w).ContentType)
}

func TestUploadRejects(t *testing.T) {
	f := setup(t, 16)

	w := upload(f, f.token, "anim.gif", "image/gif", []byte("GIF89a"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(f, f.token, "big.png", "image/png", bytes.Repeat([]byte("x"), 17))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = upload(f, "", "a.png", "image/png", []byte("x"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	omar := f.store.AddUser("omar")
	w = upload(f, testutil.Token(t, f.tokens, omar), "a.png", "image/png", []byte("x"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.Do(f.router, http.MethodPost, "/api/v1/trips/"+f.trip.ID.String()+"/photos", `{}`, f.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	photos, err := f.store.ListPhotos(context.Background(), f.trip.ID, f.jane.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestListHidesPendingFromOthers(t *testing.T) {
	f := setup(t, 1024)
	ctx := context.Background()

	pending := &types.Photo{TripID: f.trip.ID, UserID: f.jane.ID, ContentType: "image/png"}
	require.NoError(t, f.store.CreatePhoto(ctx, pending))
	ready := &types.Photo{TripID: f.trip.ID, UserID: f.jane.ID, ContentType: "image/png"}
	require.NoError(t, f.store.CreatePhoto(ctx, ready))
	require.NoError(t, f.store.UpdatePhotoStatus(ctx, ready.ID, types.PhotoReady, "x.png", "sum"))

	path := "/api/v1/trips/" + f.trip.ID.String() + "/photos"
	list := testutil.Decode[types.ListResponse[types.Photo]](t, testutil.Do(f.router, http.MethodGet, path, "", ""))
	require.Len(t, list.Items, 1)
	assert.Equal(t, ready.ID, list.Items[0].ID)
	assert.NotContains(t, testutil.Do(f.router, http.MethodGet, path, "", "").Body.String(), "x.png")

	list = testutil.Decode[types.ListResponse[types.Photo]](t, testutil.Do(f.router, http.MethodGet, path, "", f.token))
	assert.Len(t, list.Items, 2)

	w := testutil.Do(f.router, http.MethodGet, "/api/v1/photos/"+pending.ID.String(), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = testutil.Do(f.router, http.MethodGet, "/api/v1/photos/"+pending.ID.String()+"/file", "", f.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePhotoRemovesFile(t *testing.T) {
	f := setup(t, 1024)

	w := upload(f, f.token, "a.png", "image/png", []byte("png bytes"))
	require.Equal(t, http.StatusAccepted, w.Code)
	id := testutil.Decode[types.Photo](t, w).ID
	photo := waitForStatus(t, f, id, types.PhotoReady)
	abs, err := f.files.Abs(photo.StoragePath)
	require.NoError(t, err)
	require.FileExists(t, abs)

	omar := f.store.AddUser("omar")
	w = testutil.Do(f.router, http.MethodDelete, "/api/v1/photos/"+id.String(), "", testutil.Token(t, f.tokens, omar))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.Do(f.router, http.MethodDelete, "/api/v1/photos/"+id.String(), "", f.token)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.NoFileExists(t, abs)

	w = testutil.Do(f.router, http.MethodDelete, "/api/v1/photos/"+id.String(), "", f.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStorePhotoAfterDeleteCleansUp(t *testing.T) {
	f := setup(t, 1024)
	ctx := context.Background()
	svc := NewService(f.store, f.files, 1024)

	staged, _, err := f.files.Stage(bytes.NewReader([]byte("orphan")), 1024)
	require.NoError(t, err)
	job := &PhotoJob{PhotoID: uuid.New(), Staged: staged, Target: "users/u/trips/t/orphan.jpg"}

	require.NoError(t, svc.StorePhoto(ctx, job))
	abs, _ := f.files.Abs(job.Target)
	assert.NoFileExists(t, abs)
}

func TestMarkFailed(t *testing.T) {
	f := setup(t, 1024)
	ctx := context.Background()
	svc := NewService(f.store, f.files, 1024)

	photo := &types.Photo{TripID: f.trip.ID, UserID: f.jane.ID}
	require.NoError(t, f.store.CreatePhoto(ctx, photo))
	staged, _, err := f.files.Stage(bytes.NewReader([]byte("broken")), 1024)
	require.NoError(t, err)

	svc.MarkFailed(ctx, PhotoJob{PhotoID: photo.ID, Staged: staged}, assert.AnError)

	got, err := f.store.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PhotoFailed, got.Status)
	abs, _ := f.files.Abs(staged)
	assert.NoFileExists(t, abs)
}

func TestFileForLegacyPhotoWithoutStoragePath(t *testing.T) {
	f := setup(t, 1024)
	ctx := context.Background()

	photo := &types.Photo{TripID: f.trip.ID, UserID: f.jane.ID, ContentType: "image/jpeg"}
	require.NoError(t, f.store.CreatePhoto(ctx, photo))
	require.NoError(t, f.store.UpdatePhotoStatus(ctx, photo.ID, types.PhotoReady, "", ""))

	w := testutil.Do(f.router, http.MethodGet, "/api/v1/photos/"+photo.ID.String(), "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutil.Do(f.router, http.MethodGet, "/api/v1/photos/"+photo.ID.String()+"/file", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "photo file has not been migrated yet")
}

func TestUploadWhenQueueIsClosed(t *testing.T) {
	f := setup(t, 1024)
	f.workers.Stop(context.Background())

	w := upload(f, f.token, "late.png", "image/png", []byte("png bytes"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "photo queue is full, try again later")

	list, err := f.store.ListPhotos(context.Background(), f.trip.ID, f.jane.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
