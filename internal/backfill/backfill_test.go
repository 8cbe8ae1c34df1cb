package backfill

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/storage"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixedVersion int

func (v fixedVersion) Version(context.Context) (int, error) { return int(v), nil }

type storedPath struct {
	path     string
	checksum string
	size     int64
}

type fakeStore struct {
	mu sync.Mutex

	missing    map[string]int64
	fillCalls  int
	legacy     []types.LegacyPhoto
	stored     map[uuid.UUID]storedPath
	photos     []types.Photo
	users      map[string]*types.User
	seedTrips  map[string][]types.Trip
	seedDays   map[string][][]types.ItineraryDay
	legacyLeft int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		missing:   map[string]int64{},
		stored:    map[uuid.UUID]storedPath{},
		users:     map[string]*types.User{},
		seedTrips: map[string][]types.Trip{},
		seedDays:  map[string][][]types.ItineraryDay{},
	}
}

func (f *fakeStore) take(key string, limit int) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fillCalls++
	n := min(f.missing[key], int64(limit))
	f.missing[key] -= n
	return n
}

func (f *fakeStore) FillUUIDBatch(_ context.Context, table string, limit int) (int64, error) {
	return f.take(table+".uuid", limit), nil
}

func (f *fakeStore) FillReferenceBatch(_ context.Context, ref loaders.UUIDReference, limit int) (int64, error) {
	return f.take(ref.String(), limit), nil
}

func (f *fakeStore) CountMissing(_ context.Context, table, column string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.missing[table+"."+column], nil
}

func (f *fakeStore) ListLegacyPhotos(_ context.Context, after uuid.UUID, limit int) ([]types.LegacyPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.LegacyPhoto
	for _, p := range f.legacy {
		if _, done := f.stored[p.ID]; done || p.ID.String() <= after.String() {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) SetPhotoStorage(_ context.Context, id uuid.UUID, path, checksum string, size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[id] = storedPath{path: path, checksum: checksum, size: size}
	return nil
}

func (f *fakeStore) ListStoredPhotos(_ context.Context, after uuid.UUID, limit int) ([]types.Photo, error) {
	var out []types.Photo
	for _, p := range f.photos {
		if p.ID.String() <= after.String() {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) CountLegacyPhotos(context.Context) (int64, error) {
	return f.legacyLeft, nil
}

func (f *fakeStore) SeedUser(_ context.Context, u *types.User, trips []types.Trip, days [][]types.ItineraryDay) error {
	key := strings.ToLower(u.Username)
	if _, ok := f.users[key]; ok {
		return loaders.ErrConflict
	}
	u.ID = uuid.New()
	f.users[key] = u
	f.seedTrips[key] = trips
	f.seedDays[key] = days
	return nil
}

// sortedIDs returns n uuids in ascending order so paging by id is stable.
func sortedIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func newPhotoStore(t *testing.T) *storage.PhotoStore {
	t.Helper()
	files, err := storage.NewPhotoStore(t.TempDir())
	require.NoError(t, err)
	return files
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestUUIDsRequiresVersion2(t *testing.T) {
	r := NewRunner(newFakeStore(), fixedVersion(3), nil)
	_, err := r.UUIDs(context.Background(), UUIDOptions{})
	assert.EqualError(t, err, "uuid backfill needs schema version 2, database is at 3")
}

func TestUUIDsFillsInBatches(t *testing.T) {
	store := newFakeStore()
	store.missing["users.uuid"] = 5
	store.missing["trips.uuid"] = 2
	store.missing["trips.user_uuid"] = 2

	r := NewRunner(store, fixedVersion(2), nil)
	report, err := r.UUIDs(context.Background(), UUIDOptions{BatchSize: 2})
	require.NoError(t, err)

	counts := map[string]int64{}
	for _, c := range report.Counts {
		counts[c.Target] = c.Rows
	}
	assert.Equal(t, int64(5), counts["users.uuid"])
	assert.Equal(t, int64(2), counts["trips.uuid"])
	assert.Equal(t, int64(2), counts["trips.user_uuid"])
	assert.Equal(t, int64(9), report.Total())
	assert.Len(t, report.Counts, len(loaders.UUIDTables)+len(loaders.UUIDReferences))
	for key, left := range store.missing {
		assert.Zero(t, left, key)
	}
}

func TestUUIDsDryRunOnlyCounts(t *testing.T) {
	store := newFakeStore()
	store.missing["photos.uuid"] = 7

	r := NewRunner(store, fixedVersion(2), nil)
	report, err := r.UUIDs(context.Background(), UUIDOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, int64(7), report.Total())
	assert.Zero(t, store.fillCalls)
	assert.Equal(t, int64(7), store.missing["photos.uuid"])
}

func TestPhotosCopiesIntoCanonicalLayout(t *testing.T) {
	legacyRoot := t.TempDir()
	writeFile(t, filepath.Join(legacyRoot, "IMG_1.JPEG"), "jpeg bytes")

	ids := sortedIDs(3)
	user, trip := uuid.New(), uuid.New()
	store := newFakeStore()
	store.legacy = []types.LegacyPhoto{
		{ID: ids[0], TripID: trip, UserID: user, Filename: "IMG_1.JPEG"},
		{ID: ids[1], TripID: trip, UserID: user, Filename: "gone.png"},
		{ID: ids[2], TripID: trip, UserID: user, Filename: "../outside.jpg"},
	}
	files := newPhotoStore(t)

	r := NewRunner(store, fixedVersion(6), files)
	report, err := r.Photos(context.Background(), PhotoOptions{LegacyRoot: legacyRoot, BatchSize: 2, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Copied)
	assert.Equal(t, []string{"gone.png"}, report.Missing)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.Problems())

	rel := storage.CanonicalPath(user, trip, ids[0], ".jpg")
	require.Contains(t, store.stored, ids[0])
	assert.Equal(t, rel, store.stored[ids[0]].path)
	assert.Equal(t, int64(len("jpeg bytes")), store.stored[ids[0]].size)

	abs, err := files.Abs(rel)
	require.NoError(t, err)
	sum, _, err := storage.Checksum(abs)
	require.NoError(t, err)
	assert.Equal(t, sum, store.stored[ids[0]].checksum)

	_, err = os.Stat(filepath.Join(legacyRoot, "IMG_1.JPEG"))
	assert.NoError(t, err, "source must survive a copy")
}

func TestPhotosSkipsIdenticalAndMoves(t *testing.T) {
	legacyRoot := t.TempDir()
	writeFile(t, filepath.Join(legacyRoot, "a.png"), "png bytes")

	id, user, trip := uuid.New(), uuid.New(), uuid.New()
	store := newFakeStore()
	store.legacy = []types.LegacyPhoto{{ID: id, TripID: trip, UserID: user, Filename: "a.png"}}
	files := newPhotoStore(t)

	rel := storage.CanonicalPath(user, trip, id, ".png")
	abs, err := files.Abs(rel)
	require.NoError(t, err)
	writeFile(t, abs, "png bytes")

	r := NewRunner(store, fixedVersion(6), files)
	report, err := r.Photos(context.Background(), PhotoOptions{LegacyRoot: legacyRoot, Move: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Copied)
	assert.Equal(t, rel, store.stored[id].path)
	_, err = os.Stat(filepath.Join(legacyRoot, "a.png"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPhotosDryRunWritesNothing(t *testing.T) {
	legacyRoot := t.TempDir()
	writeFile(t, filepath.Join(legacyRoot, "a.webp"), "webp")

	id, user, trip := uuid.New(), uuid.New(), uuid.New()
	store := newFakeStore()
	store.legacy = []types.LegacyPhoto{{ID: id, TripID: trip, UserID: user, Filename: "a.webp"}}
	files := newPhotoStore(t)

	r := NewRunner(store, fixedVersion(6), files)
	report, err := r.Photos(context.Background(), PhotoOptions{LegacyRoot: legacyRoot, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Copied)
	assert.Empty(t, store.stored)
	abs, err := files.Abs(storage.CanonicalPath(user, trip, id, ".webp"))
	require.NoError(t, err)
	_, err = os.Stat(abs)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPhotosRejectsOldSchemaAndBadRoot(t *testing.T) {
	r := NewRunner(newFakeStore(), fixedVersion(4), newPhotoStore(t))

	_, err := r.Photos(context.Background(), PhotoOptions{LegacyRoot: t.TempDir()})
	assert.ErrorContains(t, err, "needs schema version 5")

	_, err = r.Photos(context.Background(), PhotoOptions{LegacyRoot: filepath.Join(t.TempDir(), "nope")})
	assert.ErrorContains(t, err, "is not a directory")

	_, err = r.Photos(context.Background(), PhotoOptions{})
	assert.EqualError(t, err, "legacy root is required")
}

func TestVerifyFindsMissingAndMismatchedFiles(t *testing.T) {
	files := newPhotoStore(t)
	ids := sortedIDs(3)
	user, trip := uuid.New(), uuid.New()

	okRel := storage.CanonicalPath(user, trip, ids[0], ".jpg")
	okAbs, err := files.Abs(okRel)
	require.NoError(t, err)
	writeFile(t, okAbs, "good")
	okSum, _, err := storage.Checksum(okAbs)
	require.NoError(t, err)

	badRel := storage.CanonicalPath(user, trip, ids[2], ".jpg")
	badAbs, err := files.Abs(badRel)
	require.NoError(t, err)
	writeFile(t, badAbs, "changed")

	store := newFakeStore()
	store.photos = []types.Photo{
		{ID: ids[0], StoragePath: okRel, Checksum: okSum},
		{ID: ids[1], StoragePath: storage.CanonicalPath(user, trip, ids[1], ".jpg"), Checksum: okSum},
		{ID: ids[2], StoragePath: badRel, Checksum: okSum},
	}
	store.legacyLeft = 4

	r := NewRunner(store, fixedVersion(6), files)
	report, err := r.Verify(context.Background(), VerifyOptions{BatchSize: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, report.PhotosChecked)
	assert.Equal(t, []uuid.UUID{ids[1]}, report.MissingFiles)
	assert.Equal(t, []uuid.UUID{ids[2]}, report.Mismatches)
	assert.Equal(t, int64(4), report.LegacyPhotos)
	assert.Empty(t, report.MissingUUIDs)
	assert.Equal(t, 2, report.Problems())
}

func TestVerifyCountsMissingUUIDsAtVersion2(t *testing.T) {
	store := newFakeStore()
	store.missing["users.uuid"] = 3
	store.missing["follows.followee_uuid"] = 1

	r := NewRunner(store, fixedVersion(2), newPhotoStore(t))
	report, err := r.Verify(context.Background(), VerifyOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.MissingUUIDs["users.uuid"])
	assert.Equal(t, int64(1), report.MissingUUIDs["follows.followee_uuid"])
	assert.Equal(t, 2, report.Problems())
	assert.Zero(t, report.PhotosChecked)
}

const seedYAML = `
users:
  - username: ana.s
    email: ana@example.com
    password: correct-horse
    trips:
      - title: "  Lisbon long weekend "
        destination: Lisbon
        startDate: 2024-05-01
        endDate: 2024-05-03
        tags: ["Food", "food", "Old Town"]
        itinerary:
          - dayNumber: 2
            date: 2024-05-02
            items:
              - {position: 5, title: Sintra}
              - {position: 1, title: Breakfast, startTime: "8:30"}
          - dayNumber: 1
            title: Arrival
  - username: bo
    email: bo@example.com
    password: another-pass
`

func TestSeedInsertsUsersTripsAndItineraries(t *testing.T) {
	f, err := ParseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, f.Users, 2)

	store := newFakeStore()
	r := NewRunner(store, fixedVersion(6), nil)

	_, err = r.Seed(context.Background(), f, SeedOptions{Cost: bcrypt.MinCost})
	require.Error(t, err, "username bo is too short")
	assert.Empty(t, store.users, "nothing is written when any fixture is invalid")

	f.Users[1].Username = "bo.b"
	report, err := r.Seed(context.Background(), f, SeedOptions{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 1, report.Trips)

	ana := store.users["ana.s"]
	require.NotNil(t, ana)
	assert.Equal(t, "ana.s", ana.DisplayName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(ana.PasswordHash), []byte("correct-horse")))

	trip := store.seedTrips["ana.s"][0]
	assert.Equal(t, "Lisbon long weekend", trip.Title)
	assert.Equal(t, types.VisibilityPublic, trip.Visibility)
	assert.Equal(t, []string{"food", "old-town"}, trip.Tags)
	assert.Equal(t, "2024-05-01", trip.StartDate.String())

	days := store.seedDays["ana.s"][0]
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].DayNumber)
	assert.Equal(t, "Arrival", days[0].Title)
	require.Len(t, days[1].Items, 2)
	assert.Equal(t, "Breakfast", days[1].Items[0].Title)
	assert.Equal(t, "08:30", days[1].Items[0].StartTime)
	assert.Equal(t, 1, days[1].Items[1].Position)

	again, err := r.Seed(context.Background(), f, SeedOptions{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	assert.Zero(t, again.Users)
	assert.Equal(t, []string{"ana.s", "bo.b"}, again.Skipped)
}

func TestParseSeedRejectsUnknownKeys(t *testing.T) {
	_, err := ParseSeed(strings.NewReader("users:\n  - usernme: typo\n"))
	assert.ErrorContains(t, err, "invalid seed file")

	f, err := ParseSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Users)
}
