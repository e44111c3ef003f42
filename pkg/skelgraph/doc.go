// Package skelgraph turns a thinned bitmap into a graph of curve segments.
//
// Every foreground pixel is classified by its number of foreground
// 8-neighbours:
//
//	0   isolated point  → node
//	1   curve endpoint  → node
//	2   curve interior  → part of an edge path
//	3+  branch point    → node (8-adjacent branch pixels form one junction)
//
// Edges follow runs of interior pixels from one node to the next. A closed
// curve made only of interior pixels gets a single loop node at its first
// pixel in row-major order and one edge from that node to itself.
//
// All coordinates are logical: the background border a [bitmap.Bitmap]
// carries is stripped, so (0, 0) is the top-left pixel of the image.
//
// The graph can be exported as JSON (struct tags), Graphviz DOT with
// [ToDOT], or SVG with [RenderSVG].
package skelgraph
