package storage

import "errors"

var (
	// ErrAlreadyInTx is returned by Begin and Ping on a handle that is bound
	// to a transaction.
	ErrAlreadyInTx = errors.New("storage: handle is bound to a transaction")
	// ErrNotInTx is returned by Commit and Rollback on a pool-level handle.
	ErrNotInTx = errors.New("storage: handle has no open transaction")
)
