package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "licensekit.backend/internal/domain/errors"
	domainRepos "licensekit.backend/internal/domain/repositories"
)

type contextKey string

const (
	txKey   contextKey = "tx_db"
	lockKey contextKey = "tx_lock"
)

// UnitOfWorkImpl implements UnitOfWork using GORM transactions
type UnitOfWorkImpl struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(db *gorm.DB) domainRepos.UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

// Do executes fn inside one transaction. An error from fn rolls everything
// back and is returned unchanged if it is a domain error; store errors are
// wrapped as TransactionFailure so callers know a retry is safe.
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return domainerrors.TransactionFailure(tx.Error)
	}

	txCtx := context.WithValue(ctx, txKey, tx)

	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return domainerrors.TransactionFailure(err)
	}

	return nil
}

// WithLock marks the context so reads inside the transaction lock their rows
func (u *UnitOfWorkImpl) WithLock(ctx context.Context) context.Context {
	return context.WithValue(ctx, lockKey, true)
}

// GetDB extracts the transaction from context if present, otherwise returns
// the fallback handle. Repositories in this package call it on every query so
// that the same code runs inside and outside a unit of work.
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	db := fallback
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		db = tx
	}
	if locked, ok := ctx.Value(lockKey).(bool); ok && locked {
		// sqlite has no row locks; its single-writer transactions already
		// serialize the paths this lock protects.
		if db.Dialector.Name() == "postgres" {
			db = db.Clauses(clause.Locking{Strength: "UPDATE"})
		}
	}
	return db
}

// isUniqueViolation reports whether err is a duplicate-key error from either
// the postgres or the sqlite driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
