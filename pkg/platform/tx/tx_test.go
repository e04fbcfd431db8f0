package tx

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorFrom(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	assert.Same(t, db, ExecutorFrom(ctx, db), "outside a transaction the pool is used")

	mock.ExpectBegin()
	sqlTx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	txCtx := WithTx(ctx, sqlTx)
	got, ok := From(txCtx)
	require.True(t, ok)
	assert.Same(t, sqlTx, got)
	assert.Same(t, sqlTx, ExecutorFrom(txCtx, db))

	assert.Equal(t, ctx, WithTx(ctx, nil))
}
