package admin

import (
	"fmt"

	"tactics-server/internal/engine/handlers"
	"tactics-server/internal/hexgrid"
	"tactics-server/pkg/api"
)

// HandleToggle ставит или убирает препятствие. { "q": 3, "r": -1, "enabled": false }
func HandleToggle(ctx handlers.Context, p api.TogglePayload) (handlers.Result, error) {
	target := hexgrid.Axial{Q: p.Q, R: p.R}
	if err := ctx.Arena.SetEnabled(target, *p.Enabled); err != nil {
		return handlers.Result{}, err
	}

	state := "препятствие"
	if *p.Enabled {
		state = "проход"
	}
	return handlers.Result{
		Msg:         fmt.Sprintf("Клетка %s: %s.", target, state),
		MsgType:     "WARN",
		GridChanged: true,
	}, nil
}
