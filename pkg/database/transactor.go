package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type txKey struct{}

type txState struct {
	tx          *gorm.DB
	afterCommit []func(context.Context) error
}

// Transactor scopes one logical operation to one database transaction.
type Transactor struct {
	db *gorm.DB
}

// NewTransactor creates a transactor over db
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// DB returns the underlying handle.
func (t *Transactor) DB() *gorm.DB {
	return t.db
}

// WithinTransaction runs fn inside a transaction carried by the context passed
// to fn. A call made while a transaction is already active joins it, so the
// outermost call owns commit and rollback. Hooks registered with AfterCommit
// run once the outermost transaction has committed.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	state := &txState{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txKey{}, state))
	})
	if err != nil {
		return err
	}

	var hookErrs []error
	for _, hook := range state.afterCommit {
		if err := hook(ctx); err != nil {
			hookErrs = append(hookErrs, err)
		}
	}
	if len(hookErrs) > 0 {
		return &AfterCommitError{Err: errors.Join(hookErrs...)}
	}
	return nil
}

// Conn returns the transaction bound to ctx, or db when there is none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok && state.tx != nil {
		return state.tx
	}
	return db.WithContext(ctx)
}

// AfterCommit defers fn until the transaction bound to ctx commits. Outside a
// transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func(ctx context.Context) error) error {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.afterCommit = append(state.afterCommit, fn)
		return nil
	}
	if err := fn(ctx); err != nil {
		return &AfterCommitError{Err: err}
	}
	return nil
}

// AfterCommitError reports a follow-up failure for work that did commit.
type AfterCommitError struct {
	Err error
}

func (e *AfterCommitError) Error() string {
	return "committed, but follow-up failed: " + e.Err.Error()
}

func (e *AfterCommitError) Unwrap() error {
	return e.Err
}

// IsAfterCommit reports whether err only describes post-commit follow-up work.
func IsAfterCommit(err error) bool {
	var target *AfterCommitError
	return errors.As(err, &target)
}
