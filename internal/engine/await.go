package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAwaitTimeout - зависимость не сообщила о готовности до дедлайна.
var ErrAwaitTimeout = errors.New("await: deadline exceeded")

// AwaitReady опрашивает ready раз в poll, пока он не вернет true.
// По истечении deadline возвращает ErrAwaitTimeout; при отмене ctx - ошибку
// контекста. Готовность проверяется сразу, до первого ожидания.
func AwaitReady(ctx context.Context, ready func() bool, poll, deadline time.Duration) error {
	if ready == nil {
		return errors.New("await: ready func is nil")
	}
	if ready() {
		return nil
	}
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	timeout := time.NewTimer(deadline)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("await: %w", ctx.Err())
		case <-timeout.C:
			// Последняя проверка: готовность могла наступить между тиками.
			if ready() {
				return nil
			}
			return fmt.Errorf("%w after %s", ErrAwaitTimeout, deadline)
		case <-ticker.C:
			if ready() {
				return nil
			}
		}
	}
}
