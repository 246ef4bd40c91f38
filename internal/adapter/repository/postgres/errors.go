package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// invalid_text_representation, e.g. a non-UUID string compared to a uuid column.
const codeInvalidTextRepresentation = "22P02"

func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeInvalidTextRepresentation
}
