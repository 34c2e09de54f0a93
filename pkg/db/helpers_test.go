package db

import (
	"testing"

	"github.com/jackc/pgconn"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))

	// wrapped errors only carry the SQLSTATE in their message
	assert.True(t, IsDuplicateKeyError(eris.New(`duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`)))
	assert.False(t, IsDuplicateKeyError(eris.New("connection refused")))
}

func TestReaderFallsBackToMaster(t *testing.T) {
	pools := NewPools(nil, nil)

	// no slave configured: reads are served by the master
	assert.Equal(t, pools.Writer(), pools.Reader())
}
