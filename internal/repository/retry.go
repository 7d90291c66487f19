package repository

import (
	"context"
	"errors"
	"time"

	"vending-inventory/internal/domain"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds how often a transaction is replayed after ErrStoreUnavailable
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

type retryingTxManager struct {
	next   TransactionManager
	policy RetryPolicy
	logger *zap.Logger
}

// WithRetry wraps a TransactionManager so that transactions failing with
// ErrStoreUnavailable are replayed with exponential backoff. Every other
// failure kind, and failures at commit, are returned on the first attempt.
func WithRetry(next TransactionManager, policy RetryPolicy, logger *zap.Logger) TransactionManager {
	if policy.MaxRetries == 0 {
		return next
	}
	return &retryingTxManager{next: next, policy: policy, logger: logger}
}

func (m *retryingTxManager) WithinTx(ctx context.Context, fn func(r TxRepos) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := m.next.WithinTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, ErrCommitFailed) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		m.logger.Warn("Store unavailable, retrying transaction",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	return backoff.RetryNotify(operation, m.newBackOff(ctx), notify)
}

func (m *retryingTxManager) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if m.policy.InitialInterval > 0 {
		b.InitialInterval = m.policy.InitialInterval
	}
	if m.policy.MaxInterval > 0 {
		b.MaxInterval = m.policy.MaxInterval
	}
	b.MaxElapsedTime = m.policy.MaxElapsedTime
	return backoff.WithContext(backoff.WithMaxRetries(b, m.policy.MaxRetries), ctx)
}
