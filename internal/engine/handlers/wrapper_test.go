package handlers

import (
	"encoding/json"
	"testing"

	"tactics-server/internal/domain"
	"tactics-server/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPayload(t *testing.T) {
	var got api.TogglePayload
	h := WithPayload(func(ctx Context, p api.TogglePayload) (Result, error) {
		got = p
		return Result{Msg: "ok"}, nil
	})

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: `{"q":1,"r":-2,"enabled":false}`},
		{name: "empty", raw: ``, wantErr: true},
		{name: "broken json", raw: `{"q":`, wantErr: true},
		{name: "fails validation", raw: `{"q":1,"r":2}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h(Context{}, json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", res.Msg)
			assert.Equal(t, -2, got.R)
			require.NotNil(t, got.Enabled)
			assert.False(t, *got.Enabled)
		})
	}
}

func TestWithEmptyPayload_IgnoresBody(t *testing.T) {
	h := WithEmptyPayload(func(ctx Context) (Result, error) { return Result{Reply: true}, nil })
	res, err := h(Context{}, json.RawMessage(`{"junk":true}`))
	require.NoError(t, err)
	assert.True(t, res.Reply)
}

func TestRequireActor(t *testing.T) {
	called := false
	h := RequireActor(WithEmptyPayload(func(ctx Context) (Result, error) {
		called = true
		return EmptyResult(), nil
	}))

	_, err := h(Context{}, nil)
	assert.ErrorIs(t, err, ErrNoActor)
	assert.False(t, called)

	_, err = h(Context{Actor: domain.NewAgent("a", "A", 3)}, nil)
	assert.NoError(t, err)
	assert.True(t, called)
}
