package orderitems

import (
	"fmt"
	"sort"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
)

// ImageSet maintains the display-ordered image list of one order item.
// After every mutation exactly one image is representative and it sits at
// position 0; the flag is recomputed positionally, never toggled on its own.
type ImageSet struct {
	images []ItemImage
}

// NewImageSet orders the given images by stored position and re-derives the
// representative flag.
func NewImageSet(images []ItemImage) *ImageSet {
	s := &ImageSet{images: append([]ItemImage(nil), images...)}
	sort.SliceStable(s.images, func(i, j int) bool {
		return s.images[i].Position < s.images[j].Position
	})
	s.normalize()
	return s
}

// Append adds an image at the end of the set.
func (s *ImageSet) Append(img ItemImage) {
	s.images = append(s.images, img)
	s.normalize()
}

// Remove drops the image at the given display position.
func (s *ImageSet) Remove(pos int) error {
	if pos < 0 || pos >= len(s.images) {
		return fmt.Errorf("%w: image position %d out of range", httpx.ErrValidation, pos)
	}
	s.images = append(s.images[:pos], s.images[pos+1:]...)
	s.normalize()
	return nil
}

// Move relocates the image at from to position to, shifting the rest.
// This is the drag-and-drop reorder.
func (s *ImageSet) Move(from, to int) error {
	if from < 0 || from >= len(s.images) || to < 0 || to >= len(s.images) {
		return fmt.Errorf("%w: image position out of range", httpx.ErrValidation)
	}
	if from == to {
		return nil
	}
	img := s.images[from]
	rest := append(s.images[:from:from], s.images[from+1:]...)
	s.images = append(rest[:to:to], append([]ItemImage{img}, rest[to:]...)...)
	s.normalize()
	return nil
}

// Images returns the current set in display order.
func (s *ImageSet) Images() []ItemImage {
	return append([]ItemImage(nil), s.images...)
}

// Len reports the set size.
func (s *ImageSet) Len() int {
	return len(s.images)
}

func (s *ImageSet) normalize() {
	for i := range s.images {
		s.images[i].Position = i
		s.images[i].IsRepresentative = i == 0
	}
}
