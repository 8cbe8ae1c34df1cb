package reviews

import (
	"context"
	"net/http"
	"testing"

	"github.com/Conversly/tripshare/internal/testutil"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLifecycle(t *testing.T) {
	store := testutil.NewMemStore()
	tokens := testutil.NewTokens(t)
	r := testutil.NewEngine(t)
	RegisterRoutes(r.Group("/api/v1"), store, tokens)

	jane := store.AddUser("jane")
	omar := store.AddUser("omar")
	lena := store.AddUser("lena")
	trip := store.AddTrip(jane.ID, "Patagonia", types.VisibilityPublic)
	path := "/api/v1/trips/" + trip.ID.String() + "/reviews"
	janeToken := testutil.Token(t, tokens, jane)
	omarToken := testutil.Token(t, tokens, omar)
	lenaToken := testutil.Token(t, tokens, lena)

	w := testutil.Do(r, http.MethodPost, path, `{"rating":5,"body":"Great itinerary"}`, janeToken)
	assert.Equal(t, http.StatusBadRequest, w.Code, "owners cannot review their own trip")

	for _, body := range []string{`{"rating":0}`, `{"rating":6}`, `{}`} {
		w = testutil.Do(r, http.MethodPost, path, body, omarToken)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w = testutil.Do(r, http.MethodPost, path, `{"rating":4,"body":" Windy but worth it "}`, omarToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	review := testutil.Decode[types.Review](t, w)
	assert.Equal(t, "Windy but worth it", review.Body)

	w = testutil.Do(r, http.MethodPost, path, `{"rating":1}`, omarToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.Do(r, http.MethodPost, path, `{"rating":2}`, lenaToken)
	require.Equal(t, http.StatusCreated, w.Code)

	got, err := store.GetTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ReviewCount)
	assert.InDelta(t, 3.0, got.AverageRating, 0.001)

	w = testutil.Do(r, http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := testutil.Decode[types.ListResponse[types.Review]](t, w)
	assert.Len(t, list.Items, 2)

	reviewPath := "/api/v1/reviews/" + review.ID.String()
	w = testutil.Do(r, http.MethodPatch, reviewPath, `{"rating":5}`, lenaToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.Do(r, http.MethodPatch, reviewPath, `{}`, omarToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.Do(r, http.MethodPatch, reviewPath, `{"rating":5}`, omarToken)
	require.Equal(t, http.StatusOK, w.Code)
	updated := testutil.Decode[types.Review](t, w)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Windy but worth it", updated.Body)

	w = testutil.Do(r, http.MethodDelete, reviewPath, "", janeToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = testutil.Do(r, http.MethodDelete, reviewPath, "", omarToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = testutil.Do(r, http.MethodDelete, reviewPath, "", omarToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewHiddenTrip(t *testing.T) {
	store := testutil.NewMemStore()
	tokens := testutil.NewTokens(t)
	r := testutil.NewEngine(t)
	RegisterRoutes(r.Group("/api/v1"), store, tokens)

	jane := store.AddUser("jane")
	omar := store.AddUser("omar")
	trip := store.AddTrip(jane.ID, "private", types.VisibilityPrivate)
	path := "/api/v1/trips/" + trip.ID.String() + "/reviews"

	w := testutil.Do(r, http.MethodPost, path, `{"rating":3}`, testutil.Token(t, tokens, omar))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = testutil.Do(r, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
