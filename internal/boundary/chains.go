// Package boundary строит контуры области клеток: упорядоченные замкнутые
// (или открытые) ломаные по внешним и внутренним сторонам.
package boundary

import (
	"math"

	"tactics-server/internal/hexgrid"
	"tactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// QuantizeScale - точность сравнения углов (1e-3 мировых единиц).
const QuantizeScale = 1000.0

// VertexKey - квантованная позиция угла.
type VertexKey struct {
	X, Y int64
}

// Quantize округляет точку, чтобы общие углы соседних клеток совпадали точно.
func Quantize(p hexgrid.Point) VertexKey {
	return VertexKey{
		X: int64(math.Round(p.X * QuantizeScale)),
		Y: int64(math.Round(p.Y * QuantizeScale)),
	}
}

// Edge - сторона проходимой клетки, за которой нет проходимого соседа.
type Edge struct {
	Cell *hexgrid.Cell
	Dir  int
	A, B hexgrid.Point
}

// Chain - упорядоченная цепочка сторон и ее ломаная.
type Chain struct {
	Edges  []Edge
	Points []hexgrid.Point
	Closed bool
}

// DetectEdges - фаза 1: для каждой клетки и каждого направления, если соседа
// нет в navigable, добавляем сторону по таблице углов для четности столбца.
func DetectEdges(cells []*hexgrid.Cell, navigable map[hexgrid.Axial]bool, corners hexgrid.Corners) []Edge {
	var edges []Edge
	for _, c := range cells {
		if c == nil {
			continue
		}
		off := c.Coord.ToOffset()
		parity := off.Parity()
		for dir := 0; dir < hexgrid.DirCount; dir++ {
			if navigable[off.Neighbor(dir).ToAxial()] {
				continue
			}
			pair := corners.Table[parity][dir]
			edges = append(edges, Edge{
				Cell: c,
				Dir:  dir,
				A:    c.Pos.Add(corners.Offsets[pair[0]]),
				B:    c.Pos.Add(corners.Offsets[pair[1]]),
			})
		}
	}
	return edges
}

// BuildChains - полный конвейер: стороны -> смежность по углам -> обход цепочек.
func BuildChains(cells []*hexgrid.Cell, navigable map[hexgrid.Axial]bool, corners hexgrid.Corners) []Chain {
	edges := DetectEdges(cells, navigable, corners)
	if len(edges) == 0 {
		return nil
	}

	t := newTracer(edges)
	var chains []Chain
	for i := range edges {
		if t.visited[i] {
			continue
		}
		chains = append(chains, t.trace(i))
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "boundary",
		"cells":     len(cells),
		"edges":     len(edges),
		"chains":    len(chains),
	}).Debug("Boundary chains built")

	return chains
}

// tracer держит граф смежности сторон (фаза 2) и состояние обхода (фаза 3).
type tracer struct {
	edges   []Edge
	keysA   []VertexKey
	keysB   []VertexKey
	byKey   map[VertexKey][]int
	visited []bool
}

func newTracer(edges []Edge) *tracer {
	t := &tracer{
		edges:   edges,
		keysA:   make([]VertexKey, len(edges)),
		keysB:   make([]VertexKey, len(edges)),
		byKey:   make(map[VertexKey][]int),
		visited: make([]bool, len(edges)),
	}
	for i, e := range edges {
		t.keysA[i] = Quantize(e.A)
		t.keysB[i] = Quantize(e.B)
		t.byKey[t.keysA[i]] = append(t.byKey[t.keysA[i]], i)
		t.byKey[t.keysB[i]] = append(t.byKey[t.keysB[i]], i)
	}
	return t
}

// step - одна сторона в цепочке и угол, через который мы из нее вышли.
type step struct {
	edge int
	far  VertexKey
	near VertexKey
	to   hexgrid.Point
}

// trace обходит цепочку от стороны start. Если вперед упираемся в тупик,
// достраиваем цепочку назад от ближнего угла стартовой стороны.
func (t *tracer) trace(start int) Chain {
	t.visited[start] = true
	maxIter := 2 * len(t.edges)

	forward := []step{{edge: start, near: t.keysA[start], far: t.keysB[start], to: t.edges[start].B}}
	startKey := t.keysA[start]
	loop := false

	for iter := 0; iter < maxIter; iter++ {
		cur := forward[len(forward)-1]
		if cur.far == startKey && len(forward) > 1 {
			loop = true
			break
		}
		next, ok := t.pick(cur)
		if !ok {
			break
		}
		forward = append(forward, next)
	}

	var backward []step
	if !loop {
		// Идем назад от угла A стартовой стороны.
		cur := step{edge: start, near: t.keysB[start], far: t.keysA[start], to: t.edges[start].A}
		for iter := 0; iter < maxIter; iter++ {
			next, ok := t.pick(cur)
			if !ok {
				break
			}
			backward = append(backward, next)
			cur = next
		}
	}

	return t.assemble(start, forward, backward, loop)
}

// pick выбирает непосещенную сторону, смежную по дальнему углу текущей.
// На развилке (3+ кандидата) выбор явный: сначала сторона той же клетки,
// затем наименьший поворот по часовой стрелке.
func (t *tracer) pick(cur step) (step, bool) {
	curEdge := t.edges[cur.edge]
	best := -1
	bestSame := false
	bestTurn := math.Inf(1)

	var inDir hexgrid.Point
	if cur.far == t.keysB[cur.edge] {
		inDir = curEdge.B.Sub(curEdge.A)
	} else {
		inDir = curEdge.A.Sub(curEdge.B)
	}

	for _, idx := range t.byKey[cur.far] {
		if idx == cur.edge || t.visited[idx] {
			continue
		}
		cand := t.edges[idx]
		var outDir hexgrid.Point
		if t.keysA[idx] == cur.far {
			outDir = cand.B.Sub(cand.A)
		} else {
			outDir = cand.A.Sub(cand.B)
		}
		same := cand.Cell == curEdge.Cell
		turn := clockwiseTurn(inDir, outDir)

		switch {
		case best == -1,
			same && !bestSame,
			same == bestSame && turn < bestTurn:
			best, bestSame, bestTurn = idx, same, turn
		}
	}
	if best == -1 {
		return step{}, false
	}

	t.visited[best] = true
	e := t.edges[best]
	if t.keysA[best] == cur.far {
		return step{edge: best, near: t.keysA[best], far: t.keysB[best], to: e.B}, true
	}
	return step{edge: best, near: t.keysB[best], far: t.keysA[best], to: e.A}, true
}

// clockwiseTurn - угол поворота от in к out в [0, 2π), по часовой стрелке
// на экране (ось Y вниз).
func clockwiseTurn(in, out hexgrid.Point) float64 {
	a := math.Atan2(out.Y, out.X) - math.Atan2(in.Y, in.X)
	for a < 0 {
		a += 2 * math.Pi
	}
	for a >= 2*math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

func (t *tracer) assemble(start int, forward, backward []step, loop bool) Chain {
	var ch Chain

	// Обратная часть идет в обратном порядке, ее стороны проходятся от far к near.
	if len(backward) > 0 {
		last := backward[len(backward)-1]
		ch.Points = append(ch.Points, last.to)
		for i := len(backward) - 1; i >= 0; i-- {
			ch.Edges = append(ch.Edges, t.edges[backward[i].edge])
			if i > 0 {
				ch.Points = append(ch.Points, backward[i-1].to)
			} else {
				ch.Points = append(ch.Points, t.edges[start].A)
			}
		}
	} else {
		ch.Points = append(ch.Points, t.edges[start].A)
	}

	for _, s := range forward {
		ch.Edges = append(ch.Edges, t.edges[s.edge])
		ch.Points = append(ch.Points, s.to)
	}

	if loop {
		// Замыкаем точной копией первой точки, без погрешности соседней клетки.
		ch.Points[len(ch.Points)-1] = ch.Points[0]
	}
	ch.Closed = loop && allDegreeTwo(ch.Edges)
	return ch
}

// allDegreeTwo - независимая проверка замкнутости: каждый угол цепочки
// принадлежит ровно двум ее сторонам.
func allDegreeTwo(edges []Edge) bool {
	if len(edges) < 3 {
		return false
	}
	degree := VertexDegrees(edges)
	for _, d := range degree {
		if d != 2 {
			return false
		}
	}
	return true
}

// VertexDegrees считает, сколько сторон сходится в каждом квантованном углу.
func VertexDegrees(edges []Edge) map[VertexKey]int {
	degree := make(map[VertexKey]int, len(edges))
	for _, e := range edges {
		degree[Quantize(e.A)]++
		degree[Quantize(e.B)]++
	}
	return degree
}
