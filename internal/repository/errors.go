// Package repository implements MySQL persistence for hotels, rooms,
// bookings and vault document records. This file defines sentinel
// errors shared by all repositories so that the service layer can
// distinguish failure scenarios with errors.Is without depending on
// driver-specific error codes.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique
// constraint, e.g. a regenerated hotel or room short code colliding
// with an existing one.
var ErrDuplicate = errors.New("duplicate key")

// ErrSerialization is returned when the database aborts a transaction
// because concurrent writers could not be serialized (InnoDB deadlock
// or lock wait timeout). The whole transaction is safe to retry.
var ErrSerialization = errors.New("serialization failure")

// MySQL server error numbers that map onto the sentinels above.
const (
	mysqlErrDupEntry        = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrLockDeadlock    = 1213
)

// mapError translates driver errors into repository sentinels. Errors
// with no mapping are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDupEntry:
			return ErrDuplicate
		case mysqlErrLockDeadlock, mysqlErrLockWaitTimeout:
			return ErrSerialization
		}
	}
	return err
}
