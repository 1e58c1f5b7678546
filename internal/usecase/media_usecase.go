package usecase

import (
	"context"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/cache"
)

type MediaUsecase struct {
	repo     domain.MediaRepository
	cache    cache.CacheService
	cacheTTL time.Duration
	now      func() time.Time
}

func NewMediaUsecase(repo domain.MediaRepository, cache cache.CacheService, cacheTTL time.Duration, now func() time.Time) *MediaUsecase {
	if now == nil {
		now = time.Now
	}
	return &MediaUsecase{repo: repo, cache: cache, cacheTTL: cacheTTL, now: now}
}

// ListActive returns the blocks of kind scheduled at the current time.
func (u *MediaUsecase) ListActive(ctx context.Context, kind string) ([]domain.MediaBlock, error) {
	blocks, err := cache.Fetch(u.cache, "media:"+kind, u.cacheTTL, func() ([]domain.MediaBlock, error) {
		return u.repo.ListByKind(ctx, kind)
	})
	if err != nil {
		return nil, err
	}

	now := u.now()
	active := make([]domain.MediaBlock, 0, len(blocks))
	for i := range blocks {
		if blocks[i].IsCurrentlyActive(now) {
			active = append(active, blocks[i])
		}
	}
	return active, nil
}

type MediaInput struct {
	Kind          string               `json:"kind" validate:"required,oneof=banner reel"`
	Title         string               `json:"title" validate:"max=200"`
	LocalizedText domain.LocalizedText `json:"localizedText"`
	MediaURL      string               `json:"mediaUrl" validate:"required,max=2048"`
	LinkURL       string               `json:"linkUrl" validate:"max=2048"`
	DisplayOrder  int                  `json:"displayOrder" validate:"gte=0"`
	IsActive      *bool                `json:"isActive"`
	StartAt       *time.Time           `json:"startAt"`
	EndAt         *time.Time           `json:"endAt"`
}

func (in MediaInput) validate() error {
	extra := &domain.ValidationError{}
	if in.StartAt != nil && in.EndAt != nil && in.StartAt.After(*in.EndAt) {
		extra.Add("endAt", "must not be before startAt")
	}
	checkLocales("localizedText", in.LocalizedText, extra)
	return merge(validateStruct(in), extra)
}

func (in MediaInput) apply(m *domain.MediaBlock) {
	m.Kind = in.Kind
	m.Title = in.Title
	m.LocalizedText = canonicalLocales(in.LocalizedText)
	m.MediaURL = in.MediaURL
	m.LinkURL = in.LinkURL
	m.DisplayOrder = in.DisplayOrder
	m.IsActive = in.IsActive == nil || *in.IsActive
	m.StartAt = in.StartAt
	m.EndAt = in.EndAt
}

// List returns every block of kind, scheduled or not. An empty kind lists all.
func (u *MediaUsecase) List(ctx context.Context, kind string) ([]domain.MediaBlock, error) {
	blocks, err := u.repo.ListByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	if blocks == nil {
		blocks = []domain.MediaBlock{}
	}
	return blocks, nil
}

func (u *MediaUsecase) Create(ctx context.Context, in MediaInput) (*domain.MediaBlock, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	block := &domain.MediaBlock{}
	in.apply(block)
	if err := u.repo.Create(ctx, block); err != nil {
		return nil, err
	}
	u.cache.Delete("media:" + block.Kind)
	return block, nil
}

func (u *MediaUsecase) Update(ctx context.Context, id string, in MediaInput) (*domain.MediaBlock, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	block, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousKind := block.Kind
	in.apply(block)
	if err := u.repo.Update(ctx, block); err != nil {
		return nil, err
	}
	u.cache.Delete("media:" + previousKind)
	u.cache.Delete("media:" + block.Kind)
	return block, nil
}

func (u *MediaUsecase) Delete(ctx context.Context, id string) error {
	block, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}
	u.cache.Delete("media:" + block.Kind)
	return nil
}
