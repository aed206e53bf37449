package pathfind

import (
	"container/heap"

	"tactics-server/internal/hexgrid"
	"tactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Oracle - внешний поиск кратчайшего пути между двумя клетками.
// Пустой результат означает "пути нет".
type Oracle interface {
	FindPath(start, goal *hexgrid.Cell) []*hexgrid.Cell
}

// OracleFunc позволяет передать функцию там, где ждут Oracle (удобно в тестах).
type OracleFunc func(start, goal *hexgrid.Cell) []*hexgrid.Cell

func (f OracleFunc) FindPath(start, goal *hexgrid.Cell) []*hexgrid.Cell {
	return f(start, goal)
}

// Cost - стоимость пути в шагах (переходах между клетками).
func Cost(path []*hexgrid.Cell) int {
	if len(path) == 0 {
		return 0
	}
	return len(path) - 1
}

// --- A* ---

type pathNode struct {
	cell   *hexgrid.Cell
	g, h   int
	parent *pathNode
	index  int // индекс в куче
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }

func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi == fj {
		// При равенстве предпочитаем более глубокие узлы: меньше разворотов фронта.
		return ol[i].g > ol[j].g
	}
	return fi < fj
}

func (ol openList) Swap(i, j int) {
	ol[i], ol[j] = ol[j], ol[i]
	ol[i].index = i
	ol[j].index = j
}

func (ol *openList) Push(x interface{}) {
	n := x.(*pathNode)
	n.index = len(*ol)
	*ol = append(*ol, n)
}

func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil // избегаем утечки памяти
	n.index = -1
	*ol = old[:len(old)-1]
	return n
}

// AStar ищет путь по проходимым клеткам индекса с эвристикой гекс-расстояния.
type AStar struct {
	Grid hexgrid.Index
}

func NewAStar(grid hexgrid.Index) *AStar {
	return &AStar{Grid: grid}
}

// FindPath возвращает клетки от start до goal включительно, или nil.
func (a *AStar) FindPath(start, goal *hexgrid.Cell) []*hexgrid.Cell {
	if a == nil || a.Grid == nil || start == nil || goal == nil {
		return nil
	}
	if !start.Enabled || !goal.Enabled {
		return nil
	}
	if start == goal {
		return []*hexgrid.Cell{start}
	}

	startNode := &pathNode{cell: start, h: hexgrid.Distance(start.Coord, goal.Coord)}
	ol := &openList{startNode}
	heap.Init(ol)

	closed := make(map[hexgrid.Axial]bool)
	best := map[hexgrid.Axial]*pathNode{start.Coord: startNode}

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cell == goal {
			return buildPath(cur)
		}
		if closed[cur.cell.Coord] {
			continue
		}
		closed[cur.cell.Coord] = true

		for _, n := range a.Grid.EnabledNeighbors(cur.cell) {
			if closed[n.Coord] {
				continue
			}
			g := cur.g + 1
			if prev, ok := best[n.Coord]; ok && g >= prev.g {
				continue
			}
			node := &pathNode{cell: n, g: g, h: hexgrid.Distance(n.Coord, goal.Coord), parent: cur}
			best[n.Coord] = node
			heap.Push(ol, node)
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "pathfind",
		"start":     start.Coord,
		"goal":      goal.Coord,
		"expanded":  len(closed),
	}).Debug("No path found")
	return nil
}

func buildPath(end *pathNode) []*hexgrid.Cell {
	var cells []*hexgrid.Cell
	for n := end; n != nil; n = n.parent {
		cells = append(cells, n.cell)
	}
	// Разворачиваем
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}
