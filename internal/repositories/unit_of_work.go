package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// ErrUnitOfWorkClosed is returned when Commit or Rollback is called on a
// unit of work whose transaction has already been finished. A unit of
// work is single-use; acquire a fresh one per logical operation.
var ErrUnitOfWorkClosed = errors.New("unit of work is closed")

// fatalf is the escape hatch for the one unrecoverable condition in this
// package: a failed release during teardown. Overridable in tests.
var fatalf = log.Fatalf

// UnitOfWork scopes one atomic operation. The bound repository writes
// through the same transaction that Commit or Rollback finishes.
type UnitOfWork interface {
	Users() UserRepository
	Commit() error
	Rollback() error
}

// UnitOfWorkFactory opens a fresh unit of work around fn. The enclosed
// transaction commits iff fn returns nil and is rolled back otherwise;
// the underlying resource is released on every exit path, including
// panics and context cancellation.
type UnitOfWorkFactory interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// GORMUnitOfWorkFactory implements UnitOfWorkFactory over a GORM handle.
type GORMUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGORMUnitOfWorkFactory creates a new GORMUnitOfWorkFactory.
func NewGORMUnitOfWorkFactory(db *gorm.DB) *GORMUnitOfWorkFactory {
	return &GORMUnitOfWorkFactory{
		db: db,
	}
}

// Do runs fn within a single transaction scope.
func (f *GORMUnitOfWorkFactory) Do(ctx context.Context, fn func(uow UnitOfWork) error) error {
	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	uow := &gormUnitOfWork{
		tx:    tx,
		users: NewGORMUserRepository(tx),
	}
	// The release step runs last no matter how the scope exits. Failing
	// to release the transaction leaks the connection, which nothing in
	// this process can recover from.
	defer func() {
		if err := uow.release(); err != nil {
			fatalf("failed to release unit of work: %v", err)
		}
	}()

	if err := fn(uow); err != nil {
		return err
	}
	// ErrUnitOfWorkClosed here means fn finished the transaction
	// explicitly; there is nothing left to commit.
	if err := uow.Commit(); err != nil && !errors.Is(err, ErrUnitOfWorkClosed) {
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}
	return nil
}

// gormUnitOfWork is the Active-state handle passed to the scoped
// function. closed flips exactly once.
type gormUnitOfWork struct {
	tx     *gorm.DB
	users  UserRepository
	closed bool
}

// Users returns the repository bound to this scope's transaction.
func (u *gormUnitOfWork) Users() UserRepository {
	return u.users
}

// Commit finishes the transaction, keeping its writes.
func (u *gormUnitOfWork) Commit() error {
	if u.closed {
		return ErrUnitOfWorkClosed
	}
	u.closed = true
	return u.tx.Commit().Error
}

// Rollback finishes the transaction, discarding its writes.
func (u *gormUnitOfWork) Rollback() error {
	if u.closed {
		return ErrUnitOfWorkClosed
	}
	u.closed = true
	return u.tx.Rollback().Error
}

// release rolls back anything still open. sql.ErrTxDone means the driver
// already finished the transaction (e.g. on context cancellation), so
// the resource is not leaked and the error is not fatal.
func (u *gormUnitOfWork) release() error {
	if u.closed {
		return nil
	}
	u.closed = true
	if err := u.tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
