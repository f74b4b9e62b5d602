package onetime

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/signet-auth/signet"
)

// SQLiteStore keeps single-use records in a SQLite database, for
// deployments without a Redis. Expiry is checked at lookup time; expired
// rows are removed lazily when touched.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and initializes
// the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open single-use database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS single_use_tokens (
			id         TEXT PRIMARY KEY,
			claims     TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		);`,
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init single-use schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, id string, claims signet.Claims, expiresAt time.Time) error {
	var exp int64
	if !expiresAt.IsZero() {
		if !expiresAt.After(time.Now()) {
			return signet.ErrTokenNotFoundOrExpired
		}
		exp = expiresAt.Unix()
	}

	data, err := json.Marshal(claims)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO single_use_tokens (id, claims, expires_at)
		VALUES (?1, ?2, ?3);`,
		id, string(data), exp,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Consume deletes the row and reads its contents in one statement.
// Concurrent consumers of one id race on a single DELETE; only the one
// whose DELETE removed the row gets it back, the rest see no rows and
// report not-found like any other consumed token.
func (s *SQLiteStore) Consume(ctx context.Context, id string) (signet.Claims, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM single_use_tokens WHERE id = ?1
		RETURNING claims, expires_at;`, id)

	var data string
	var exp int64
	if err := row.Scan(&data, &exp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, signet.ErrTokenNotFoundOrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var claims signet.Claims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, signet.ErrTokenNotFoundOrExpired
	}
	if exp > 0 && time.Now().Unix() > exp {
		return nil, signet.ErrTokenNotFoundOrExpired
	}
	return claims, nil
}

func (s *SQLiteStore) Peek(ctx context.Context, id string) (signet.Claims, error) {
	claims, exp, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp > 0 && time.Now().Unix() > exp {
		_, _ = s.db.ExecContext(ctx,
			`DELETE FROM single_use_tokens WHERE id = ?1;`, id)
		return nil, signet.ErrTokenNotFoundOrExpired
	}
	return claims, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM single_use_tokens WHERE id = ?1;`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return signet.ErrTokenNotFoundOrExpired
	}
	return nil
}

func (s *SQLiteStore) read(ctx context.Context, id string) (signet.Claims, int64, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT claims, expires_at FROM single_use_tokens WHERE id = ?1;`, id)

	var data string
	var exp int64
	if err := row.Scan(&data, &exp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, signet.ErrTokenNotFoundOrExpired
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var claims signet.Claims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, 0, signet.ErrTokenNotFoundOrExpired
	}
	return claims, exp, nil
}
