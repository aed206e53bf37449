package actions

import (
	"fmt"

	"tactics-server/internal/engine/handlers"
)

// HandleInit просит полный снимок. Ход не тратит.
func HandleInit(ctx handlers.Context) (handlers.Result, error) {
	if ctx.Actor == nil {
		return handlers.Result{Reply: true}, nil
	}
	return handlers.Result{
		Msg:     fmt.Sprintf("%s на связи.", ctx.Actor.Name),
		MsgType: "INFO",
		Reply:   true,
	}, nil
}
