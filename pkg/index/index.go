// Package index finds the source images of a contact sheet.
//
// [Scan] lists a directory (non-recursively) and keeps the entries whose
// content a registered decoder recognizes. Everything else (subdirectories,
// text files, truncated headers) is reported as [Skipped] rather than failing
// the run, because image folders routinely contain other files.
//
// [Sort] orders entries by natural file-name order, so "img2.png" comes
// before "img10.png". The order is the placement key of the sheet.
package index

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/fvbommel/sortorder"

	"github.com/matzehuels/imagestitch/pkg/errors"
	"github.com/matzehuels/imagestitch/pkg/grid"
	"github.com/matzehuels/imagestitch/pkg/imageio"
)

// Entry is a readable source image.
type Entry struct {
	Path   string         // path as passed to Scan, joined with the file name
	Name   string         // base file name, the sort key
	Format string         // decoder that recognized the file
	Size   grid.Dimension // header size
}

// Skipped is a directory entry Scan ignored.
type Skipped struct {
	Path   string
	Reason string
}

// Scan returns the decodable images directly inside dir in directory order.
// A missing or unreadable dir is an INPUT_NOT_FOUND error.
func Scan(dir string) ([]Entry, []Skipped, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInputNotFound, err, "input directory %s", dir)
	}
	if !info.IsDir() {
		return nil, nil, errors.New(errors.ErrCodeInputNotFound, "input %s is not a directory", dir)
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInputNotFound, err, "read input directory %s", dir)
	}

	var (
		entries []Entry
		skipped []Skipped
	)
	for _, d := range dirEntries {
		path := filepath.Join(dir, d.Name())

		// Stat follows symlinks so linked images are picked up too.
		fi, err := os.Stat(path)
		if err != nil {
			skipped = append(skipped, Skipped{Path: path, Reason: err.Error()})
			continue
		}
		if !fi.Mode().IsRegular() {
			skipped = append(skipped, Skipped{Path: path, Reason: "not a regular file"})
			continue
		}

		h, err := imageio.Sniff(path)
		if err != nil {
			skipped = append(skipped, Skipped{Path: path, Reason: "not a readable image: " + err.Error()})
			continue
		}
		entries = append(entries, Entry{
			Path:   path,
			Name:   d.Name(),
			Format: h.Format,
			Size:   h.Size,
		})
	}
	return entries, skipped, nil
}

// Sort orders entries in place by natural file-name order.
// Digit runs compare numerically; equal names fall back to the full path.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Name != b.Name {
			return sortorder.NaturalLess(a.Name, b.Name)
		}
		return a.Path < b.Path
	})
}

// Exclude drops the entry that refers to path, typically the output file
// when it is written into the input directory.
func Exclude(entries []Entry, path string) []Entry {
	target, err := filepath.Abs(path)
	if err != nil {
		return entries
	}
	out := entries[:0]
	for _, e := range entries {
		if abs, err := filepath.Abs(e.Path); err == nil && abs == target {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Paths returns the paths of entries in order.
func Paths(entries []Entry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}
