// png2dmc - convert images into cross-stitch patterns
//
// png2dmc reduces an image to a bounded set of colours, matches each colour
// to its nearest DMC floss, and renders a stitchable pattern with symbolic
// markers plus a colour key.
package main

import (
	"github.com/aast242/png2dmc/internal/cli"
)

func main() {
	cli.Execute()
}
