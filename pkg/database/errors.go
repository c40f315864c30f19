package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err is a unique or primary key
// violation. Dialects whose translator already produced
// gorm.ErrDuplicatedKey match directly. SQLite errors are matched by
// extended code because the driver returns sqlite3.Error by value, which
// the sqlite dialector's translator does not recognise.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var byValue sqlite3.Error
	if errors.As(err, &byValue) {
		return isSQLiteUnique(byValue)
	}
	var byPointer *sqlite3.Error
	if errors.As(err, &byPointer) && byPointer != nil {
		return isSQLiteUnique(*byPointer)
	}
	return false
}

func isSQLiteUnique(e sqlite3.Error) bool {
	return e.ExtendedCode == sqlite3.ErrConstraintUnique ||
		e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
