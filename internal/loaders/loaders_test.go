package loaders

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)

	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
	err := mapError(unique)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "users_email_key")

	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "likes_trip_id_fkey"}
	assert.ErrorIs(t, mapError(fk), ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError(other))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% pure\_fun \\o/`, EscapeLike(`100% pure_fun \o/`))
	assert.Equal(t, "kyoto", EscapeLike("kyoto"))
}

func TestBuildTripListQuery(t *testing.T) {
	owner := uuid.New()
	sql, args := buildTripListQuery(types.TripFilter{
		UserID:       &owner,
		Destination:  " Lisbon ",
		Tag:          "food",
		Visibilities: []types.Visibility{types.VisibilityPublic, types.VisibilityFollowers},
		Limit:        20,
		Offset:       40,
	})

	assert.Contains(t, sql, "t.visibility = ANY($1)")
	assert.Contains(t, sql, "t.user_id = $2")
	assert.Contains(t, sql, "t.destination ILIKE $3")
	assert.Contains(t, sql, "$4 = ANY(t.tags)")
	assert.True(t, strings.HasSuffix(sql, "LIMIT $5 OFFSET $6"))
	assert.Equal(t, []interface{}{
		[]string{"public", "followers"}, owner, "%Lisbon%", "food", 20, 40,
	}, args)
}

func TestBuildTripListQueryMinimal(t *testing.T) {
	sql, args := buildTripListQuery(types.TripFilter{
		Visibilities: []types.Visibility{types.VisibilityPublic},
		Limit:        10,
	})
	assert.NotContains(t, sql, "ILIKE")
	assert.True(t, strings.HasSuffix(sql, "LIMIT $2 OFFSET $3"))
	assert.Len(t, args, 3)
}

func TestBuildTripListQueryTitleSearch(t *testing.T) {
	sql, args := buildTripListQuery(types.TripFilter{
		Query:        " 100% Kyoto ",
		Visibilities: []types.Visibility{types.VisibilityPublic},
		Limit:        10,
	})
	assert.Contains(t, sql, `t.title COLLATE "C" ILIKE $2`)
	assert.True(t, strings.HasSuffix(sql, "LIMIT $3 OFFSET $4"))
	assert.Equal(t, `%100\% Kyoto%`, args[1])
}

func TestUUIDReferencesPointAtUUIDTables(t *testing.T) {
	tables := map[string]bool{}
	for _, table := range UUIDTables {
		tables[table] = true
	}
	for _, ref := range UUIDReferences {
		assert.True(t, tables[ref.Parent], ref.String())
		assert.True(t, strings.HasSuffix(ref.Column, "_uuid"), ref.String())
	}
}
