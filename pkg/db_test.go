package pkg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsForeignKeyViolationError(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503"}
	assert.True(t, IsForeignKeyViolationError(fkErr))
	assert.True(t, IsForeignKeyViolationError(fmt.Errorf("insert: %w", fkErr)))

	assert.False(t, IsForeignKeyViolationError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsForeignKeyViolationError(errors.New("not a pg error")))
	assert.False(t, IsForeignKeyViolationError(nil))
}
