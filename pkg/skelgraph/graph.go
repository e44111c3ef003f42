package skelgraph

import (
	"cmp"
	"slices"

	"github.com/matzehuels/skeletonize/pkg/bitmap"
)

// Kind classifies a node.
type Kind string

const (
	KindIsolated Kind = "isolated"
	KindEndpoint Kind = "endpoint"
	KindJunction Kind = "junction"
	KindLoop     Kind = "loop"
)

// minSelfLoop is the shortest self-loop kept. Shorter ones are a junction
// cluster touching itself through a single interior pixel.
const minSelfLoop = 3

// Point is a logical pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Node is an isolated pixel, endpoint, junction or loop anchor.
type Node struct {
	ID   int   `json:"id"`
	Kind Kind  `json:"kind"`
	At   Point `json:"at"`

	// Pixels lists every pixel of a junction cluster, At included, in
	// row-major order. Spurs too short to form a loop are folded in.
	Pixels []Point `json:"pixels,omitempty"`

	// Degree counts incident edge ends; a self-loop counts twice.
	Degree int `json:"degree"`
}

// Edge is a curve segment between two nodes.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`

	// Path runs from a pixel of From to a pixel of To, both included.
	Path []Point `json:"path"`
}

// Length returns the number of unit steps along the path.
func (e Edge) Length() int {
	if len(e.Path) == 0 {
		return 0
	}
	return len(e.Path) - 1
}

// Graph is the extracted skeleton graph.
type Graph struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
}

// Count returns the number of nodes of kind k.
func (g *Graph) Count(k Kind) int {
	n := 0
	for _, node := range g.Nodes {
		if node.Kind == k {
			n++
		}
	}
	return n
}

// extractor holds the per-pixel bookkeeping of one Extract call. Pixels are
// addressed by their flat index into the padded bitmap.
type extractor struct {
	b      *bitmap.Bitmap
	w      int
	degree []int
	node   []int // owning node ID, or -1
	seen   []bool
	g      *Graph
}

// Extract builds the skeleton graph of b. b is not modified.
func Extract(b *bitmap.Bitmap) *Graph {
	w, h := b.Size()
	lw, lh := b.LogicalSize()
	e := &extractor{
		b:      b,
		w:      w,
		degree: make([]int, w*h),
		node:   make([]int, w*h),
		seen:   make([]bool, w*h),
		g:      &Graph{Width: lw, Height: lh, Nodes: []Node{}, Edges: []Edge{}},
	}
	for i := range e.node {
		e.node[i] = -1
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if !b.At(x, y) {
				continue
			}
			for _, v := range b.Ring(x, y) {
				if v {
					e.degree[y*w+x]++
				}
			}
		}
	}

	e.collectNodes(h)
	for id := 0; id < len(e.g.Nodes); id++ {
		e.traceFrom(id)
	}
	e.collectLoops(h)

	for i := range e.g.Nodes {
		if e.g.Nodes[i].Kind == KindJunction {
			sortPoints(e.g.Nodes[i].Pixels)
		}
	}
	return e.g
}

// collectNodes creates nodes in row-major order of their first pixel.
func (e *extractor) collectNodes(h int) {
	for y := 1; y < h-1; y++ {
		for x := 1; x < e.w-1; x++ {
			i := y*e.w + x
			if !e.b.At(x, y) || e.degree[i] == 2 || e.node[i] >= 0 {
				continue
			}
			id := len(e.g.Nodes)
			n := Node{ID: id, At: e.point(i)}
			switch d := e.degree[i]; {
			case d == 0:
				n.Kind = KindIsolated
				e.node[i] = id
			case d == 1:
				n.Kind = KindEndpoint
				e.node[i] = id
			default:
				n.Kind = KindJunction
				n.Pixels = e.cluster(i, id)
			}
			e.g.Nodes = append(e.g.Nodes, n)
		}
	}
}

// cluster flood-fills the junction pixels 8-connected to start.
func (e *extractor) cluster(start, id int) []Point {
	var pixels []Point
	stack := []int{start}
	e.node[start] = id
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pixels = append(pixels, e.point(i))
		for _, j := range e.neighbors(i) {
			if e.degree[j] >= 3 && e.node[j] < 0 {
				e.node[j] = id
				stack = append(stack, j)
			}
		}
	}
	sortPoints(pixels)
	return pixels
}

// collectLoops anchors every closed curve not reached from a node.
func (e *extractor) collectLoops(h int) {
	for y := 1; y < h-1; y++ {
		for x := 1; x < e.w-1; x++ {
			i := y*e.w + x
			if !e.b.At(x, y) || e.degree[i] != 2 || e.seen[i] || e.node[i] >= 0 {
				continue
			}
			id := len(e.g.Nodes)
			e.node[i] = id
			e.g.Nodes = append(e.g.Nodes, Node{ID: id, Kind: KindLoop, At: e.point(i)})
			e.traceFrom(id)
		}
	}
}

// traceFrom follows every untraced branch leaving node id.
func (e *extractor) traceFrom(id int) {
	n := e.g.Nodes[id]
	starts := n.Pixels
	if len(starts) == 0 {
		starts = []Point{n.At}
	}
	for _, p := range starts {
		i := e.index(p)
		for _, j := range e.neighbors(i) {
			switch {
			case e.node[j] == id:
				// Inside the same junction cluster.
			case e.node[j] >= 0:
				// Adjacent node pixel; record once per pixel pair.
				if i < j {
					e.addEdge(id, e.node[j], []Point{p, e.point(j)})
				}
			case !e.seen[j]:
				e.walk(id, i, j)
			}
		}
	}
}

// walk follows interior pixels from node pixel from through next until it
// reaches a node pixel.
func (e *extractor) walk(id, from, next int) {
	path := []Point{e.point(from)}
	prev, cur := from, next
	for {
		path = append(path, e.point(cur))
		if e.node[cur] >= 0 {
			break
		}
		e.seen[cur] = true
		step := -1
		for _, j := range e.neighbors(cur) {
			if j != prev {
				step = j
				break
			}
		}
		prev, cur = cur, step
	}
	to := e.node[cur]
	if to == id && len(path)-1 < minSelfLoop {
		n := &e.g.Nodes[id]
		n.Pixels = append(n.Pixels, path[1:len(path)-1]...)
		return
	}
	e.addEdge(id, to, path)
}

func (e *extractor) addEdge(from, to int, path []Point) {
	e.g.Edges = append(e.g.Edges, Edge{From: from, To: to, Path: path})
	e.g.Nodes[from].Degree++
	e.g.Nodes[to].Degree++
}

// neighbors returns the foreground 8-neighbours of pixel i in ring order.
func (e *extractor) neighbors(i int) []int {
	x, y := i%e.w, i/e.w
	out := make([]int, 0, bitmap.RingSize)
	for k := range bitmap.RingSize {
		nx, ny := bitmap.Neighbor(x, y, k)
		if e.b.At(nx, ny) {
			out = append(out, ny*e.w+nx)
		}
	}
	return out
}

func (e *extractor) point(i int) Point {
	return Point{X: i%e.w - 1, Y: i/e.w - 1}
}

func (e *extractor) index(p Point) int {
	return (p.Y+1)*e.w + p.X + 1
}

func sortPoints(ps []Point) {
	slices.SortFunc(ps, func(a, b Point) int {
		if a.Y != b.Y {
			return cmp.Compare(a.Y, b.Y)
		}
		return cmp.Compare(a.X, b.X)
	})
}
