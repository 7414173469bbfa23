package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstraintViolations(t *testing.T) {
	fkPgx := fmt.Errorf("delete country: %w", &pgconn.PgError{Code: "23503"})
	fkPQ := &pq.Error{Code: "23503"}
	uniquePgx := &pgconn.PgError{Code: "23505"}
	uniquePQ := fmt.Errorf("insert user: %w", &pq.Error{Code: "23505"})

	assert.True(t, IsForeignKeyViolation(fkPgx))
	assert.True(t, IsForeignKeyViolation(fkPQ))
	assert.False(t, IsForeignKeyViolation(uniquePgx))

	assert.True(t, IsUniqueViolation(uniquePgx))
	assert.True(t, IsUniqueViolation(uniquePQ))
	assert.False(t, IsUniqueViolation(fkPQ))

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsForeignKeyViolation(errors.New("plain")))
}
