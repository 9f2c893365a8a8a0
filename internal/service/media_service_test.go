package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"Admission/internal/repository"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageStore struct {
	uploaded map[string]string
}

func (s *fakeImageStore) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, contentType string) (string, error) {
	if _, err := io.ReadAll(reader); err != nil {
		return "", err
	}
	s.uploaded[objectName] = contentType
	return objectName, nil
}

func (s *fakeImageStore) PublicURL(objectName string) string {
	return "http://minio.local/bucket/" + objectName
}

type fakeImageRepo struct {
	repository.ImageRepo
	images   map[uint64]*model.Image
	nextID   uint64
	attachOn uint64
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[uint64]*model.Image)}
}

func (r *fakeImageRepo) CreateImage(_ context.Context, img *model.Image) error {
	r.nextID++
	img.ID = r.nextID
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now()
	}
	r.images[img.ID] = img
	return nil
}

func (r *fakeImageRepo) GetImagesByIDs(_ context.Context, ids []uint64) ([]*model.Image, error) {
	var res []*model.Image
	for _, id := range ids {
		if img, ok := r.images[id]; ok {
			res = append(res, img)
		}
	}
	return res, nil
}

func (r *fakeImageRepo) ListOrphans(_ context.Context, before time.Time, limit int) ([]*model.Image, error) {
	var res []*model.Image
	for id := uint64(1); id <= r.nextID && len(res) < limit; id++ {
		img, ok := r.images[id]
		if !ok || img.MessageID != nil || img.PostID != nil || img.CommentID != nil {
			continue
		}
		if img.CreatedAt.Before(before) {
			res = append(res, img)
		}
	}
	return res, nil
}

func (r *fakeImageRepo) DeleteImages(_ context.Context, ids []uint64) (int64, error) {
	// 模拟扫描期间被消息挂载的图片
	if img, ok := r.images[r.attachOn]; ok {
		msgID := uint64(99)
		img.MessageID = &msgID
	}
	var n int64
	for _, id := range ids {
		img, ok := r.images[id]
		if !ok || img.MessageID != nil {
			continue
		}
		delete(r.images, id)
		n++
	}
	return n, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestUploadImageStoresDetectedType(t *testing.T) {
	store := &fakeImageStore{uploaded: make(map[string]string)}
	repo := newFakeImageRepo()
	svc := NewMediaService(store, repo, &fakeProducer{})

	img, err := svc.UploadImage(context.Background(), 7, bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), img.ID)
	assert.Equal(t, "http://minio.local/bucket/"+img.PublicID, img.URL)
	assert.Equal(t, "image/png", store.uploaded[img.PublicID])
	assert.Contains(t, img.PublicID, ".png")
	assert.Equal(t, uint64(7), repo.images[1].UploaderID)
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	store := &fakeImageStore{uploaded: make(map[string]string)}
	svc := NewMediaService(store, newFakeImageRepo(), &fakeProducer{})

	body := []byte("just some text, not an image")
	_, err := svc.UploadImage(context.Background(), 7, bytes.NewReader(body), int64(len(body)))

	assert.ErrorIs(t, err, ErrFileNotSupported)
	assert.Empty(t, store.uploaded)
}

func TestCleanupOrphansEnqueuesDeletesForUnattachedImages(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeImageRepo()
	postID := uint64(3)
	seed := []*model.Image{
		{PublicID: "images/old-orphan.png", CreatedAt: now.Add(-48 * time.Hour)},
		{PublicID: "images/old-attached.png", CreatedAt: now.Add(-48 * time.Hour), PostID: &postID},
		{PublicID: "images/fresh.png", CreatedAt: now.Add(-time.Hour)},
		{PublicID: "images/racing.png", CreatedAt: now.Add(-48 * time.Hour)},
	}
	for _, img := range seed {
		require.NoError(t, repo.CreateImage(context.Background(), img))
	}
	repo.attachOn = 4

	producer := &fakeProducer{}
	svc := NewMediaService(&fakeImageStore{uploaded: make(map[string]string)}, repo, producer).(*mediaServiceImpl)
	svc.now = func() time.Time { return now }

	n, err := svc.CleanupOrphans(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	jobs := producer.byQueue(consts.QueueDeleteImage)
	require.Len(t, jobs, 1)
	assert.Equal(t, consts.JobDeleteImage, jobs[0].name)
	assert.Equal(t, dto.DeleteImageJob{PublicID: "images/old-orphan.png"}, jobs[0].payload)
	assert.Len(t, repo.images, 3)
}
