package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireOnce_FirstCallerWins(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := &Client{Client: db}
	ctx := context.Background()

	mock.ExpectSetNX("claims:pipeline:abc", "1", time.Hour).SetVal(true)
	mock.ExpectSetNX("claims:pipeline:abc", "1", time.Hour).SetVal(false)

	first, err := client.AcquireOnce(ctx, "claims:pipeline:abc", "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := client.AcquireOnce(ctx, "claims:pipeline:abc", "1", time.Hour)
	require.NoError(t, err)
	assert.False(t, second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireOnce_PropagatesErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := &Client{Client: db}

	mock.ExpectSetNX("k", "1", time.Minute).SetErr(errors.New("connection refused"))

	ok, err := client.AcquireOnce(context.Background(), "k", "1", time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestHolder(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := &Client{Client: db}

	mock.ExpectGet("claims:pipeline:abc").SetVal("claims-7c9f")
	mock.ExpectGet("claims:pipeline:missing").RedisNil()

	holder, err := client.Holder(context.Background(), "claims:pipeline:abc")
	require.NoError(t, err)
	assert.Equal(t, "claims-7c9f", holder)

	holder, err = client.Holder(context.Background(), "claims:pipeline:missing")
	require.NoError(t, err)
	assert.Empty(t, holder)

	assert.NoError(t, mock.ExpectationsWereMet())
}
