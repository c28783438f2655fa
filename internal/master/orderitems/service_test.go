package orderitems

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type memoryRepo struct {
	items  map[int64]OrderItem
	images map[int64][]ItemImage
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[int64]OrderItem{}, images: map[int64][]ItemImage{}, nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, _ shared.ListFilters) ([]OrderItem, int, error) {
	out := make([]OrderItem, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (OrderItem, error) {
	item, ok := m.items[id]
	if !ok {
		return OrderItem{}, shared.ErrNotFound
	}
	item.Images = m.images[id]
	return item, nil
}

func (m *memoryRepo) Create(_ context.Context, item OrderItem) (OrderItem, error) {
	for _, existing := range m.items {
		if existing.Code == item.Code {
			return OrderItem{}, httpx.ErrDuplicate
		}
	}
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, item OrderItem) error {
	existing, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	item.ID = id
	item.Code = existing.Code
	item.IsTrading = existing.IsTrading
	m.items[id] = item
	return nil
}

func (m *memoryRepo) SetTrading(_ context.Context, id int64, trading bool) error {
	item, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	item.IsTrading = trading
	m.items[id] = item
	return nil
}

func (m *memoryRepo) ListImages(_ context.Context, itemID int64) ([]ItemImage, error) {
	return m.images[itemID], nil
}

func (m *memoryRepo) ReplaceImages(_ context.Context, itemID int64, images []ItemImage) ([]string, error) {
	keep := make(map[int64]bool, len(images))
	for _, img := range images {
		if img.ID > 0 {
			keep[img.ID] = true
		}
	}
	var removed []string
	for _, img := range m.images[itemID] {
		if !keep[img.ID] {
			removed = append(removed, img.Path)
		}
	}
	next := make([]ItemImage, 0, len(images))
	for _, img := range images {
		if img.ID == 0 {
			img.ID = m.nextID
			m.nextID++
		}
		next = append(next, img)
	}
	m.images[itemID] = next
	return removed, nil
}

type memoryFiles struct {
	saved   map[string]string
	removed []string
	nextSeq int
}

func newMemoryFiles() *memoryFiles {
	return &memoryFiles{saved: map[string]string{}}
}

func (m *memoryFiles) Save(name string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	m.nextSeq++
	path := fmt.Sprintf("/images/%d-%s", m.nextSeq, name)
	m.saved[name] = path
	return path, nil
}

func (m *memoryFiles) Remove(path string) error {
	m.removed = append(m.removed, path)
	return nil
}

func seedItem(t *testing.T, repo *memoryRepo) OrderItem {
	t.Helper()
	item, err := repo.Create(context.Background(), OrderItem{
		Code:          "OI-100",
		Name:          "브라켓",
		CompanyID:     1,
		CoatingMethod: CoatingLiquid,
		IsTrading:     true,
	})
	require.NoError(t, err)
	return item
}

func TestRegisterRejectsUnknownCoatingMethod(t *testing.T) {
	svc := NewService(newMemoryRepo(), newMemoryFiles())

	_, err := svc.Register(context.Background(), RegisterOrderItemRequest{
		Code:          "OI-1",
		Name:          "item",
		CompanyID:     1,
		CoatingMethod: "SPRAY",
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRegisterDefaultsToTrading(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, newMemoryFiles())

	created, err := svc.Register(context.Background(), RegisterOrderItemRequest{
		Code:           "OI-1",
		Name:           "item",
		CompanyID:      1,
		CoatingMethod:  "POWDER",
		RoutingStepIDs: []int64{10, 20},
	})
	require.NoError(t, err)
	assert.True(t, created.IsTrading)
	require.Len(t, created.Routing, 2)
	assert.Equal(t, 0, created.Routing[0].Position)
	assert.Equal(t, 1, created.Routing[1].Position)
}

func TestUpdateImagesStoresNewUploads(t *testing.T) {
	repo := newMemoryRepo()
	files := newMemoryFiles()
	svc := NewService(repo, files)
	item := seedItem(t, repo)

	images, err := svc.UpdateImages(context.Background(), item.ID,
		[]ImageManifestEntry{{FileName: "front.jpg"}, {FileName: "back.jpg"}},
		map[string]io.Reader{
			"front.jpg": strings.NewReader("front-bytes"),
			"back.jpg":  strings.NewReader("back-bytes"),
		})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.True(t, images[0].IsRepresentative)
	assert.False(t, images[1].IsRepresentative)
	assert.Equal(t, files.saved["front.jpg"], images[0].Path)
}

func TestUpdateImagesRemovesAbsentPersistedImages(t *testing.T) {
	repo := newMemoryRepo()
	files := newMemoryFiles()
	svc := NewService(repo, files)
	item := seedItem(t, repo)

	first, err := svc.UpdateImages(context.Background(), item.ID,
		[]ImageManifestEntry{{FileName: "a.jpg"}, {FileName: "b.jpg"}},
		map[string]io.Reader{
			"a.jpg": strings.NewReader("a"),
			"b.jpg": strings.NewReader("b"),
		})
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Drop the old representative; the survivor takes its place.
	second, err := svc.UpdateImages(context.Background(), item.ID,
		[]ImageManifestEntry{{ID: first[1].ID}}, nil)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[1].ID, second[0].ID)
	assert.True(t, second[0].IsRepresentative)
	assert.Equal(t, 0, second[0].Position)
	assert.Contains(t, files.removed, first[0].Path)
}

func TestUpdateImagesReorderMovesRepresentative(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, newMemoryFiles())
	item := seedItem(t, repo)

	first, err := svc.UpdateImages(context.Background(), item.ID,
		[]ImageManifestEntry{{FileName: "a.jpg"}, {FileName: "b.jpg"}},
		map[string]io.Reader{
			"a.jpg": strings.NewReader("a"),
			"b.jpg": strings.NewReader("b"),
		})
	require.NoError(t, err)

	swapped, err := svc.UpdateImages(context.Background(), item.ID,
		[]ImageManifestEntry{{ID: first[1].ID}, {ID: first[0].ID}}, nil)
	require.NoError(t, err)
	require.Len(t, swapped, 2)
	assert.Equal(t, first[1].ID, swapped[0].ID)
	assert.True(t, swapped[0].IsRepresentative)
	assert.False(t, swapped[1].IsRepresentative)
}

func TestUpdateImagesMissingFilePart(t *testing.T) {
	repo := newMemoryRepo()
	files := newMemoryFiles()
	svc := NewService(repo, files)
	item := seedItem(t, repo)

	_, err := svc.UpdateImages(context.Background(), item.ID,
		[]ImageManifestEntry{{FileName: "stored.jpg"}, {FileName: "ghost.jpg"}},
		map[string]io.Reader{"stored.jpg": strings.NewReader("bytes")})
	require.ErrorIs(t, err, httpx.ErrValidation)
	// The already stored upload is cleaned up when the batch fails.
	assert.Contains(t, files.removed, files.saved["stored.jpg"])
}

func TestUpdateImagesRejectsForeignImageID(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, newMemoryFiles())
	item := seedItem(t, repo)

	_, err := svc.UpdateImages(context.Background(), item.ID,
		[]ImageManifestEntry{{ID: 999}}, nil)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGetUnknownItem(t *testing.T) {
	svc := NewService(newMemoryRepo(), newMemoryFiles())

	_, err := svc.Get(context.Background(), 42)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
