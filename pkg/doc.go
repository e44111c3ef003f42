// Package pkg is the library half of skeletonize, which reduces black and
// white raster images to one-pixel-wide skeletons.
//
// # Layout
//
//	bitmap         padded binary raster and the 8-neighbour ring
//	thinning       pixel classifier, subiteration pass, round engine
//	codec          image files to bitmaps and back
//	pipeline       decode → thin → encode, with caching and timing
//	skelgraph      skeleton → node/edge graph, DOT/SVG/JSON export
//	cache          result cache backends (file, redis, mongo, null)
//	config         TOML configuration
//	errors         coded user-facing errors
//	observability  metric hooks
//	buildinfo      version stamped at link time
//
// # Data flow
//
//	image file
//	     ↓
//	[codec] Decode (adds a background border)
//	     ↓
//	[thinning] Engine.Run (rounds until nothing is erased)
//	     ↓
//	[codec] Encode (strips the border)
//
// # Quick Start
//
//	b, err := codec.Decode("in.png", codec.Options{})
//	if err != nil {
//	    return err
//	}
//	res := thinning.Thin(b)
//	fmt.Println(res.Rounds, res.Erased)
//	return codec.Encode("out.png", res.Bitmap)
package pkg
