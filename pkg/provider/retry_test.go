package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryTransport(t *testing.T) {
	ctx := context.Background()

	t.Run("初回成功なら再試行しない", func(t *testing.T) {
		calls := 0
		err := retryTransport(ctx, "test_op", 2, func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("maxRetries=0は1回だけ実行してTransportErrorを返す", func(t *testing.T) {
		calls := 0
		cause := errors.New("connection refused")
		err := retryTransport(ctx, "test_op", 0, func() error {
			calls++
			return cause
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "test_op", te.Op)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("コンテキストの取り消しでバックオフを待たずに抜ける", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		calls := 0
		start := time.Now()
		err := retryTransport(canceled, "test_op", 3, func() error {
			calls++
			return errors.New("一時的な失敗")
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Less(t, time.Since(start), time.Second, "バックオフ待ちに入ってはいけない")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},  // 下限に丸め
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second}, // 上限に丸め
		{10, 10 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, backoffDelay(tt.attempt), "attempt=%d", tt.attempt)
	}
}
