package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNumericOutOfRange   = "22003"
	pgStringTooLong       = "22001"
)

var (
	ErrCategoryNotFound      = fmt.Errorf("category %w", domain.ErrNotFound)
	ErrCategoryAlreadyExists = fmt.Errorf("%w: category with this name already exists", domain.ErrConflict)
	ErrCategoryInUse         = fmt.Errorf("%w: category is still referenced by products", domain.ErrConflict)

	ErrProductNotFound      = fmt.Errorf("product %w", domain.ErrNotFound)
	ErrProductAlreadyExists = fmt.Errorf("%w: product with this name or slug already exists", domain.ErrConflict)
	ErrSKUAlreadyExists     = fmt.Errorf("%w: variant with this sku already exists", domain.ErrConflict)
	ErrPrimaryImageExists   = fmt.Errorf("%w: product already has a primary image", domain.ErrConflict)

	ErrVariantNotFound = fmt.Errorf("variant %w", domain.ErrNotFound)
	ErrImageNotFound   = fmt.Errorf("image %w", domain.ErrNotFound)
)

// DBTX is the subset of pgxpool.Pool used by the repositories. It is also
// satisfied by pgxmock pools in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier is implemented by both DBTX and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) (string, bool) {
	if pgErr, ok := pgError(err); ok && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func isForeignKeyViolation(err error) (string, bool) {
	if pgErr, ok := pgError(err); ok && pgErr.Code == pgForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func isCheckViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgCheckViolation
}

// isOutOfRange reports values that do not fit their column.
func isOutOfRange(err error) bool {
	pgErr, ok := pgError(err)
	return ok && (pgErr.Code == pgNumericOutOfRange || pgErr.Code == pgStringTooLong)
}

// withTx runs fn in a transaction, committing on success and rolling back on
// any error returned by fn.
func withTx(ctx context.Context, db DBTX, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
