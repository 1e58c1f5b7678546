package domain

import (
	"context"
	"time"
)

// MediaBlock is a scheduled storefront banner or reel.
type MediaBlock struct {
	ID            string        `json:"id"`
	Kind          string        `json:"kind"`
	Title         string        `json:"title"`
	LocalizedText LocalizedText `json:"localizedText"`
	MediaURL      string        `json:"mediaUrl"`
	LinkURL       string        `json:"linkUrl"`
	DisplayOrder  int           `json:"displayOrder"`
	IsActive      bool          `json:"isActive"`
	StartAt       *time.Time    `json:"startAt,omitempty"`
	EndAt         *time.Time    `json:"endAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// IsCurrentlyActive returns true if the block is enabled and within its schedule.
func (m *MediaBlock) IsCurrentlyActive(now time.Time) bool {
	if !m.IsActive {
		return false
	}
	if m.StartAt != nil && now.Before(*m.StartAt) {
		return false
	}
	if m.EndAt != nil && now.After(*m.EndAt) {
		return false
	}
	return true
}

type MediaRepository interface {
	ListByKind(ctx context.Context, kind string) ([]MediaBlock, error)
	GetByID(ctx context.Context, id string) (*MediaBlock, error)
	Create(ctx context.Context, block *MediaBlock) error
	Update(ctx context.Context, block *MediaBlock) error
	Delete(ctx context.Context, id string) error
}
