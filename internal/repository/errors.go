package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// invalidTextRepresentation is raised when a lookup key is not a valid UUID.
const invalidTextRepresentation pq.ErrorCode = "22P02"

// lookupErr reports a malformed id as a missing row.
func lookupErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation {
		return sql.ErrNoRows
	}
	return err
}
