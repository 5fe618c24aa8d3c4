package classification

import (
	"github.com/LdDl/facetrack-go/condensation"
	"github.com/LdDl/facetrack-go/imageio"
	"github.com/LdDl/facetrack-go/imageprocessing"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// LoadPatches turns every image of the directory into a training patch of the given size
func LoadPatches(dir string, patchWidth, patchHeight int, filters ...imageprocessing.PatchFilter) ([]*condensation.Patch, error) {
	if patchWidth <= 0 || patchHeight <= 0 {
		return nil, ErrInvalidPatchSize
	}
	paths, err := imageio.ListImages(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.Wrapf(ErrNoExamples, "directory %s", dir)
	}
	patches := make([]*condensation.Patch, 0, len(paths))
	for _, path := range paths {
		img, err := imaging.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "can't decode %s", path)
		}
		patches = append(patches, imageprocessing.PatchFromImage(img, patchWidth, patchHeight, filters...))
	}
	return patches, nil
}
