package db

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	ErrConnection = errors.New("no se pudo conectar a la base de datos")
	ErrOperation  = errors.New("error en operación de base de datos")
)

// MySQL server error numbers
const (
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
	mysqlUnhandledSignal = 1644
)

// IsForeignKeyViolation reports whether err was raised by a foreign key
// constraint, whichever driver produced it.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlRowIsReferenced || myErr.Number == mysqlNoReferencedRow
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return true
		}
		// RESTRICT actions halt with a bare constraint code
		if liteErr.Code != sqlite3.ErrConstraint {
			return false
		}
	}

	// libsql surfaces sqlite errors as plain text
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// SignalMessage returns the text of a SIGNAL raised inside a stored procedure,
// or the plain error text for drivers that do not distinguish it.
func SignalMessage(err error) string {
	if err == nil {
		return ""
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlUnhandledSignal {
		return myErr.Message
	}
	return err.Error()
}
