// Package pkg provides the core libraries for imagestitch.
//
// # Overview
//
// imagestitch copies a directory of equally sized images into a single
// contact sheet (or sprite sheet). The pkg directory is organized into
// three areas:
//
//  1. Domain logic: [grid], [index], [compose], [atlas]
//  2. Infrastructure: [imageio], [cache], [observability], [errors], [buildinfo]
//  3. Orchestration: [pipeline]
//
// # Architecture
//
// The typical data flow:
//
//	Input directory
//	       ↓
//	  [index] package (sniff, skip non-images, natural sort)
//	       ↓
//	  [grid] package (tile size + max extent → canvas and cells)
//	       ↓
//	  [compose] package (parallel decode, copy into cells)
//	       ↓
//	  [imageio] package (encode, atomic write)
//	       ↓
//	  PNG/JPEG/GIF/TIFF/BMP sheet (+ optional [atlas] JSON)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/imagestitch/pkg/grid"
//	    "github.com/matzehuels/imagestitch/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), pipeline.Options{
//	    Input:     "frames",
//	    Output:    "out/sheet.png",
//	    Max:       1024,
//	    Direction: grid.RowMajor,
//	})
//	fmt.Println(result.Layout.Size())
//
// # Main Packages
//
// [grid] - Layout arithmetic. Given the tile size, the image count, the
// maximum extent of the bounded axis and the fill direction, computes the
// canvas size and maps each image index to a cell.
//
// [index] - Directory listing with content sniffing and natural ordering.
//
// [compose] - Bounded parallel decoding and pixel copy onto an NRGBA canvas,
// with fail, center and anchor policies for tiles of a different size.
//
// [atlas] - JSON frame index of a finished sheet.
//
// [imageio] - Decoder registration, output format resolution and atomic
// writes.
//
// [cache] - Content-addressed sheet cache with file, Redis and null
// backends.
//
// [pipeline] - Plan and render phases shared by the CLI and tests.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/grid/...     # Specific package
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/imagestitch/pkg/grid
// [index]: https://pkg.go.dev/github.com/matzehuels/imagestitch/pkg/index
// [compose]: https://pkg.go.dev/github.com/matzehuels/imagestitch/pkg/compose
// [atlas]: https://pkg.go.dev/github.com/matzehuels/imagestitch/pkg/atlas
// [imageio]: https://pkg.go.dev/github.com/matzehuels/imagestitch/pkg/imageio
// [cache]: https://pkg.go.dev/github.com/matzehuels/imagestitch/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/imagestitch/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/imagestitch/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/imagestitch/pkg/buildinfo
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/imagestitch/pkg/pipeline
package pkg
