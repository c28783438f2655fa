package orderitems

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func requireRepresentativeInvariant(t *testing.T, s *ImageSet) {
	t.Helper()
	images := s.Images()
	for i, img := range images {
		require.Equal(t, i, img.Position)
		require.Equal(t, i == 0, img.IsRepresentative, "image at position %d", i)
	}
}

func TestImageSetAppendKeepsFirstRepresentative(t *testing.T) {
	s := NewImageSet(nil)

	s.Append(ItemImage{ID: 1, FileName: "front.jpg"})
	requireRepresentativeInvariant(t, s)
	require.True(t, s.Images()[0].IsRepresentative)

	s.Append(ItemImage{ID: 2, FileName: "back.jpg"})
	s.Append(ItemImage{FileName: "pending-upload.jpg"})
	requireRepresentativeInvariant(t, s)
	require.Equal(t, int64(1), s.Images()[0].ID)
}

func TestImageSetRemoveRederivesRepresentative(t *testing.T) {
	s := NewImageSet([]ItemImage{
		{ID: 1, Position: 0, IsRepresentative: true},
		{ID: 2, Position: 1},
		{ID: 3, Position: 2},
	})

	require.NoError(t, s.Remove(0))
	requireRepresentativeInvariant(t, s)
	require.Equal(t, int64(2), s.Images()[0].ID)

	require.Error(t, s.Remove(5))
	require.Equal(t, 2, s.Len())
}

func TestImageSetMove(t *testing.T) {
	s := NewImageSet([]ItemImage{
		{ID: 1, Position: 0},
		{ID: 2, Position: 1},
		{ID: 3, Position: 2},
	})

	require.NoError(t, s.Move(2, 0))
	requireRepresentativeInvariant(t, s)
	require.Equal(t, int64(3), s.Images()[0].ID)
	require.Equal(t, int64(1), s.Images()[1].ID)

	require.NoError(t, s.Move(0, 2))
	requireRepresentativeInvariant(t, s)
	require.Equal(t, int64(1), s.Images()[0].ID)
	require.Equal(t, int64(3), s.Images()[2].ID)
}

func TestImageSetRandomisedOperationsHoldInvariant(t *testing.T) {
	s := NewImageSet(nil)
	ops := []func(){
		func() { s.Append(ItemImage{FileName: "x.jpg"}) },
		func() {
			if s.Len() > 0 {
				_ = s.Remove(s.Len() - 1)
			}
		},
		func() {
			if s.Len() > 1 {
				_ = s.Move(s.Len()-1, 0)
			}
		},
	}
	for i := 0; i < 60; i++ {
		ops[i%len(ops)]()
		if s.Len() > 0 {
			requireRepresentativeInvariant(t, s)
		}
	}
}

func TestNewImageSetSortsByStoredPosition(t *testing.T) {
	s := NewImageSet([]ItemImage{
		{ID: 3, Position: 2, IsRepresentative: true},
		{ID: 1, Position: 0},
		{ID: 2, Position: 1},
	})
	requireRepresentativeInvariant(t, s)
	require.Equal(t, int64(1), s.Images()[0].ID)
}
