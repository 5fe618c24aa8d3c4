package imageio

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// ListImages returns paths of the image files in the directory sorted by name
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read directory %s", dir)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// DirectoryImageSource reads the frames of a video stored as numbered image files
type DirectoryImageSource struct {
	paths []string
	next  int
}

// NewDirectoryImageSource creates new instance of DirectoryImageSource
func NewDirectoryImageSource(dir string) (*DirectoryImageSource, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	return &DirectoryImageSource{
		paths: paths,
	}, nil
}

// Next returns the next frame and its path. Returns io.EOF after the last one.
func (source *DirectoryImageSource) Next() (image.Image, string, error) {
	if source.next >= len(source.paths) {
		return nil, "", io.EOF
	}
	path := source.paths[source.next]
	source.next++
	img, err := imaging.Open(path)
	if err != nil {
		return nil, path, errors.Wrapf(err, "can't decode %s", path)
	}
	return img, path, nil
}

// Len returns number of frames
func (source *DirectoryImageSource) Len() int {
	return len(source.paths)
}
