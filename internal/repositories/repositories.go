// package repositories provides persistence layer implementations for all model types.
package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/mixtape/internal/shared"
)

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// dataErr wraps err with [shared.ErrDataAccess] and an action description.
func dataErr(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %v", shared.ErrDataAccess, action, err)
}

// checkAffected returns a [shared.ErrNotFound] error naming what when result touched no rows.
func checkAffected(result sql.Result, what string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return dataErr("get affected rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %d", shared.ErrNotFound, what, id)
	}
	return nil
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
