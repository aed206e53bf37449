package engine

import (
	"tactics-server/internal/domain"
	"tactics-server/internal/hexgrid"
	"tactics-server/pkg/api"
)

// BuildStateFor создает снимок сессии для клиента с токеном token.
// Сетка целиком кладется только когда withGrid (INIT, TOGGLE).
func (s *Session) BuildStateFor(token string, withGrid bool, logs []api.LogEntry) *api.ServerResponse {
	msgType := api.TypeUpdate
	if withGrid {
		msgType = api.TypeInit
	}

	resp := &api.ServerResponse{
		Type:   msgType,
		Tick:   s.turn,
		Agents: s.agentViews(),
		Logs:   logs,
	}
	if active := s.ActiveAgent(); active != nil {
		resp.ActiveAgentID = string(active.ID)
	}
	if a := s.Agent(domain.AgentID(token)); a != nil {
		resp.MyAgentID = string(a.ID)
	}
	if withGrid {
		resp.Grid = s.gridView()
	}

	resp.Range, resp.Boundary = s.rangeView()
	resp.Plan = s.planView()
	resp.Progress = s.progressView()
	return resp
}

func toCoord(a hexgrid.Axial) api.Coord {
	return api.Coord{Q: a.Q, R: a.R}
}

func toPoint(p hexgrid.Point) api.PointView {
	return api.PointView{X: p.X, Y: p.Y}
}

func toPoints(points []hexgrid.Point) []api.PointView {
	out := make([]api.PointView, len(points))
	for i, p := range points {
		out[i] = toPoint(p)
	}
	return out
}

func (s *Session) gridView() *api.GridView {
	cells := s.grid.Cells()
	view := &api.GridView{
		Width:   s.grid.Width,
		Height:  s.grid.Height,
		HexSize: s.grid.Layout.Size,
		Cells:   make([]api.CellView, 0, len(cells)),
	}
	for _, c := range cells {
		off := c.Coord.ToOffset()
		view.Cells = append(view.Cells, api.CellView{
			Coord:   toCoord(c.Coord),
			Col:     off.Col,
			Row:     off.Row,
			Pos:     toPoint(c.Pos),
			Enabled: c.Enabled,
		})
	}
	return view
}

// PreviewRange считает область агента, не сохраняя ее в сессии.
func (s *Session) PreviewRange(agent *domain.Agent) *api.RangeView {
	view, _ := s.rangeViewOf(s.buildRange(agent))
	return view
}

func (s *Session) rangeView() (*api.RangeView, []api.ChainView) {
	return s.rangeViewOf(s.rangeState)
}

func (s *Session) rangeViewOf(rs *RangeState) (*api.RangeView, []api.ChainView) {
	if rs == nil {
		return nil, nil
	}

	view := &api.RangeView{
		AgentID: string(rs.AgentID),
		Policy:  rs.Policy,
		Cells:   make([]api.CostView, 0, rs.Result.Len()),
	}
	if a := s.Agent(rs.AgentID); a != nil {
		view.Remaining = a.Remaining
	}
	for _, c := range rs.Result.Cells {
		view.Cells = append(view.Cells, api.CostView{
			Coord: toCoord(c.Coord),
			Cost:  rs.Result.Cost[c.Coord],
		})
	}

	chains := make([]api.ChainView, len(rs.Chains))
	for i, ch := range rs.Chains {
		chains[i] = api.ChainView{
			Closed: ch.Closed,
			Points: toPoints(rs.Smoothed[i]),
		}
	}
	return view, chains
}

func (s *Session) planView() *api.PlanView {
	plan := s.planner.Current()
	if plan == nil {
		return nil
	}
	view := &api.PlanView{
		AgentID:  plan.AgentID,
		Path:     make([]api.Coord, len(plan.Path)),
		Target:   toCoord(plan.Target.Coord),
		Distance: plan.Distance,
		Smoothed: toPoints(s.SmoothedPlan()),
	}
	for i, c := range plan.Path {
		view.Path[i] = toCoord(c.Coord)
	}
	return view
}

func (s *Session) progressView() *api.ProgressView {
	if s.runner == nil {
		return nil
	}
	return &api.ProgressView{
		AgentID:  string(s.runner.ID),
		State:    s.exec.State().String(),
		Progress: s.exec.Progress(),
		Waypoint: s.exec.Waypoint(),
		Position: toPoint(s.runner.Position()),
	}
}

func (s *Session) agentViews() []api.AgentView {
	out := make([]api.AgentView, 0, len(s.order))
	for _, a := range s.order {
		out = append(out, ToAgentView(a))
	}
	return out
}

// ToAgentView конвертирует агента в DTO.
func ToAgentView(a *domain.Agent) api.AgentView {
	view := api.AgentView{
		ID:          string(a.ID),
		Name:        a.Name,
		Team:        a.Team,
		Pos:         toPoint(a.Position()),
		Remaining:   a.Remaining,
		MaxDistance: a.MaxDistance,
	}
	if a.Cell != nil {
		c := toCoord(a.Cell.Coord)
		view.Cell = &c
	}
	return view
}
