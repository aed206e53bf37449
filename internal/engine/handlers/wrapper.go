package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"tactics-server/pkg/api"
)

// ErrInvalidPayload - payload не разобрался или не прошел проверку.
var ErrInvalidPayload = errors.New("invalid payload")

// TypedHandlerFunc - это "чистый" хендлер, который работает с готовой структурой T
type TypedHandlerFunc[T any] func(ctx Context, payload T) (Result, error)

// EmptyHandlerFunc - хендлер, которому НЕ нужны данные (INIT, EXECUTE)
type EmptyHandlerFunc func(ctx Context) (Result, error)

// WithPayload берет "чистый" хендлер и превращает его в стандартный HandlerFunc.
// Она берет на себя Unmarshal и Validate.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx Context, raw json.RawMessage) (Result, error) {
		var payload T

		if len(raw) == 0 {
			return Result{}, fmt.Errorf("%w: payload is required", ErrInvalidPayload)
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}

		// Проверяем, реализует ли структура T интерфейс Validator
		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return Result{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
		}

		return handler(ctx, payload)
	}
}

// WithEmptyPayload - обертка для команд без данных. Входящий JSON игнорируется.
func WithEmptyPayload(handler EmptyHandlerFunc) HandlerFunc {
	return func(ctx Context, _ json.RawMessage) (Result, error) {
		return handler(ctx)
	}
}

// RequireActor - обертка для команд, которые нельзя слать без своего агента.
func RequireActor(next HandlerFunc) HandlerFunc {
	return func(ctx Context, raw json.RawMessage) (Result, error) {
		if ctx.Actor == nil {
			return Result{}, ErrNoActor
		}
		return next(ctx, raw)
	}
}

// ErrNoActor - команду прислал наблюдатель без агента.
var ErrNoActor = errors.New("command requires an agent")
