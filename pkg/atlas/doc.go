// Package atlas describes where each source image landed on a sheet.
//
// A sheet on its own loses the file names of its tiles. An [Atlas] keeps
// them: it lists every frame with its source name and pixel rectangle, so
// sprite loaders and thumbnail viewers can cut the sheet back apart.
//
// # JSON Format
//
//	{
//	  "image": "sheet.png",
//	  "width": 200,
//	  "height": 200,
//	  "tile": {"width": 100, "height": 100},
//	  "direction": "X",
//	  "frames": [
//	    {"name": "img1.png", "x": 0, "y": 0, "w": 100, "h": 100, "row": 0, "col": 0},
//	    {"name": "img2.png", "x": 100, "y": 0, "w": 100, "h": 100, "row": 0, "col": 1}
//	  ]
//	}
//
// Frames appear in placement order. The rectangle is the grid cell; a source
// of a different size (see the center and anchor mismatch policies) carries
// its own size in "source".
//
// [Write] and [Read] round-trip the format; [Export] writes it atomically next
// to the sheet.
package atlas
