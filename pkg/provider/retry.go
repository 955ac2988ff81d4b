package provider

import (
	"context"
	"log/slog"
	"time"
)

const (
	backoffMin = 2 * time.Second
	backoffMax = 10 * time.Second
)

// retryTransport は一時的な障害に対する指数バックオフつき再試行です。
// maxRetries 回の再試行（合計 maxRetries+1 回の実行）を超えた時点で
// 最後のエラーを TransportError に包んで返します。生成層のJSON再試行
// とは独立した層で、予算を共有しません。
func retryTransport(ctx context.Context, op string, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			slog.Warn("プロバイダ呼び出しを再試行します",
				"op", op, "attempt", attempt, "delay", delay.String(), "error", lastErr)
			select {
			case <-ctx.Done():
				return &TransportError{Op: op, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return &TransportError{Op: op, Err: lastErr}
}

// backoffDelay は 1s * 2^attempt を [backoffMin, backoffMax] に収めます。
func backoffDelay(attempt int) time.Duration {
	delay := time.Second << uint(attempt)
	if delay < backoffMin {
		return backoffMin
	}
	if delay > backoffMax {
		return backoffMax
	}
	return delay
}
