// Package imageio is the codec boundary of imagestitch.
//
// It registers every decoder the tool understands (PNG, JPEG and GIF from the
// standard library; BMP, TIFF and WebP from golang.org/x/image), sniffs files
// by content rather than extension, decodes source tiles and encodes the
// finished sheet with github.com/disintegration/imaging.
//
// Output is written atomically: the encoded sheet goes to a temporary file in
// the destination directory and is renamed over the target only after the
// encoder succeeded, so a failed run never leaves a truncated image behind.
package imageio
