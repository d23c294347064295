package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var ErrDuplicate = errors.New("duplicate key")

const mysqlDupEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDupEntry
}

// ErrUnknownReference is returned when a row points at a missing parent,
// e.g. a customer tagged with a profile that does not exist.
var ErrUnknownReference = errors.New("unknown reference")

const mysqlNoReferencedRow = 1452

func isMissingReference(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlNoReferencedRow
}

// mapWriteErr translates driver errors callers need to react to.
func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case isDuplicate(err):
		return ErrDuplicate
	case isMissingReference(err):
		return ErrUnknownReference
	default:
		return err
	}
}
