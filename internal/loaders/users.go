package loaders

import (
	"context"
	"strings"

	"github.com/Conversly/tripshare/internal/queries"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner, extra ...interface{}) (*types.User, error) {
	var u types.User
	dest := []interface{}{
		&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.Bio, &u.AvatarURL,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]types.User, error) {
	defer rows.Close()
	users := []types.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u.Public())
	}
	return users, mapError(rows.Err())
}

// CreateUser inserts u and fills in its generated fields.
func (c *PostgresClient) CreateUser(ctx context.Context, u *types.User) error {
	return createUser(ctx, c.pool, u)
}

func createUser(ctx context.Context, q Queryer, u *types.User) error {
	err := q.QueryRow(ctx, queries.InsertUser,
		u.Username, u.Email, u.PasswordHash, u.DisplayName,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapError(err)
}

func (c *PostgresClient) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return scanUser(c.pool.QueryRow(ctx, queries.SelectUserByID, id))
}

// GetUserByLogin looks a user up by username or email, ignoring case.
func (c *PostgresClient) GetUserByLogin(ctx context.Context, login string) (*types.User, error) {
	return scanUser(c.pool.QueryRow(ctx, queries.SelectUserByLogin, strings.TrimSpace(login)))
}

func (c *PostgresClient) GetUserProfile(ctx context.Context, id uuid.UUID) (*types.UserProfile, error) {
	var p types.UserProfile
	u, err := scanUser(
		c.pool.QueryRow(ctx, queries.SelectUserProfile, id),
		&p.TripCount, &p.FollowerCount, &p.FollowingCount,
	)
	if err != nil {
		return nil, err
	}
	p.User = *u
	return &p, nil
}

func (c *PostgresClient) UpdateUser(ctx context.Context, id uuid.UUID, patch types.UserPatch) (*types.User, error) {
	return scanUser(c.pool.QueryRow(ctx, queries.UpdateUser,
		id, patch.DisplayName, patch.Bio, patch.AvatarURL,
	))
}

// SearchUsers matches query as a case-insensitive substring of the username
// or display name.
func (c *PostgresClient) SearchUsers(ctx context.Context, query string, limit, offset int) ([]types.User, error) {
	escaped := EscapeLike(query)
	rows, err := c.pool.Query(ctx, queries.SearchUsers, "%"+escaped+"%", escaped+"%", limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	return collectUsers(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so s matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
