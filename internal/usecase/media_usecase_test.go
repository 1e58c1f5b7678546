package usecase

import (
	"context"
	"testing"
	"time"

	"atelier-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedia_ListActiveFollowsSchedule(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	later := t0.Add(time.Hour)
	soon := t0.Add(30 * time.Minute)

	_, err := s.mediaUC.Create(ctx, MediaInput{Kind: domain.MediaKindBanner, MediaURL: "/summer.jpg", DisplayOrder: 1})
	require.NoError(t, err)
	_, err = s.mediaUC.Create(ctx, MediaInput{Kind: domain.MediaKindBanner, MediaURL: "/launch.jpg", DisplayOrder: 2, StartAt: &later})
	require.NoError(t, err)
	_, err = s.mediaUC.Create(ctx, MediaInput{Kind: domain.MediaKindBanner, MediaURL: "/flash.jpg", DisplayOrder: 3, EndAt: &soon})
	require.NoError(t, err)
	_, err = s.mediaUC.Create(ctx, MediaInput{Kind: domain.MediaKindReel, MediaURL: "/reel.mp4"})
	require.NoError(t, err)
	_, err = s.mediaUC.Create(ctx, MediaInput{Kind: domain.MediaKindBanner, MediaURL: "/off.jpg", IsActive: ptr(false)})
	require.NoError(t, err)

	urls := func() []string {
		blocks, err := s.mediaUC.ListActive(ctx, domain.MediaKindBanner)
		require.NoError(t, err)
		out := make([]string, len(blocks))
		for i, b := range blocks {
			out[i] = b.MediaURL
		}
		return out
	}

	assert.Equal(t, []string{"/summer.jpg", "/flash.jpg"}, urls())
	s.clock.Advance(2 * time.Hour)
	assert.Equal(t, []string{"/summer.jpg", "/launch.jpg"}, urls())
	// The schedule is evaluated on each call; the repo is read once.
	assert.Equal(t, 1, s.media.Calls)
}

func TestMedia_WritesInvalidateCache(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()

	block, err := s.mediaUC.Create(ctx, MediaInput{Kind: domain.MediaKindReel, MediaURL: "/a.mp4"})
	require.NoError(t, err)
	active, err := s.mediaUC.ListActive(ctx, domain.MediaKindReel)
	require.NoError(t, err)
	require.Len(t, active, 1)

	_, err = s.mediaUC.Update(ctx, block.ID, MediaInput{Kind: domain.MediaKindBanner, MediaURL: "/a.jpg"})
	require.NoError(t, err)
	active, err = s.mediaUC.ListActive(ctx, domain.MediaKindReel)
	require.NoError(t, err)
	assert.Empty(t, active)
	active, err = s.mediaUC.ListActive(ctx, domain.MediaKindBanner)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, s.mediaUC.Delete(ctx, block.ID))
	active, err = s.mediaUC.ListActive(ctx, domain.MediaKindBanner)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.ErrorIs(t, s.mediaUC.Delete(ctx, block.ID), domain.ErrNotFound)
}

func TestMedia_InputValidation(t *testing.T) {
	s := newShop(t)
	start, end := t0.Add(time.Hour), t0
	_, err := s.mediaUC.Create(context.Background(), MediaInput{Kind: "popup", StartAt: &start, EndAt: &end})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "kind")
	assert.Contains(t, verr.Fields, "mediaUrl")
	assert.Contains(t, verr.Fields, "endAt")

	all, err := s.mediaUC.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
