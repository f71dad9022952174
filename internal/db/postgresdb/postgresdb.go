// Package postgresdb provides a PostgreSQL-based implementation of the
// storage contract. It persists users and links and relies on the
// database's unique indexes for username and short-code uniqueness.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/akarasev/shurl/internal/db/storage"
	"github.com/akarasev/shurl/internal/models"
	"github.com/akarasev/shurl/internal/user"
)

// PostgresDB is a PostgreSQL-backed implementation of storage.Storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("setting the migration dialect: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	return result, nil
}

// CreateUser inserts a new user record. The ID is assigned here when empty.
// A username collision is reported as storage.ErrConflict.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	stored := *usr
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}

	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3)`,
		stored.ID,
		stored.Username,
		stored.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrConflict
		}
		return nil, err
	}

	return &stored, nil
}

// FindUserByUsername returns storage.ErrNotFound for an unknown username.
func (db *PostgresDB) FindUserByUsername(ctx context.Context, username string) (*user.User, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash FROM users WHERE username = $1`,
		username,
	)

	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Username, &usr.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return usr, nil
}

// CreateLink inserts a new link record. The ID is assigned here when empty.
// A short-code collision is reported as storage.ErrConflict.
func (db *PostgresDB) CreateLink(ctx context.Context, link *models.Link) (*models.Link, error) {
	stored := *link
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}

	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO links (id, original_url, short_code, owner_id) VALUES ($1, $2, $3, $4)`,
		stored.ID,
		stored.OriginalURL,
		stored.ShortCode,
		stored.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrConflict
		}
		return nil, err
	}

	return &stored, nil
}

// FindLinkByShortCode returns storage.ErrNotFound for an unknown code.
func (db *PostgresDB) FindLinkByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	return db.findLink(
		ctx,
		`SELECT id, original_url, short_code, owner_id FROM links WHERE short_code = $1`,
		shortCode,
	)
}

// FindLinkByID returns storage.ErrNotFound for an unknown ID.
func (db *PostgresDB) FindLinkByID(ctx context.Context, id string) (*models.Link, error) {
	return db.findLink(
		ctx,
		`SELECT id, original_url, short_code, owner_id FROM links WHERE id = $1`,
		id,
	)
}

func (db *PostgresDB) findLink(ctx context.Context, query string, arg any) (*models.Link, error) {
	row := db.database.QueryRowContext(ctx, query, arg)

	link := &models.Link{}
	err := row.Scan(&link.ID, &link.OriginalURL, &link.ShortCode, &link.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return link, nil
}

// ListLinksByOwner returns every link owned by the given user.
func (db *PostgresDB) ListLinksByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, original_url, short_code, owner_id FROM links WHERE owner_id = $1`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Link{}
	for rows.Next() {
		var link models.Link
		err = rows.Scan(&link.ID, &link.OriginalURL, &link.ShortCode, &link.OwnerID)
		if err != nil {
			return nil, err
		}

		result = append(result, link)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteLinkByID removes the link record.
// Deleting an absent record is reported as storage.ErrNotFound.
func (db *PostgresDB) DeleteLinkByID(ctx context.Context, id string) error {
	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM links WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// Ping verifies connectivity with the database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == "23505" // unique_violation
}
