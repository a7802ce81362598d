package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/repository"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

// ContentService manages storefront content: carousel banners.
type ContentService struct {
	bannerRepo repository.BannerRepository
	logger     *slog.Logger
}

// NewContentService creates a new content service.
func NewContentService(bannerRepo repository.BannerRepository, logger *slog.Logger) *ContentService {
	return &ContentService{
		bannerRepo: bannerRepo,
		logger:     logger,
	}
}

// BannerInput holds the parameters for creating or updating a banner.
type BannerInput struct {
	Title    string
	Subtitle string
	ImageURL string
	LinkURL  string
	Position int
	Active   bool
}

// ListActiveBanners returns the banners shown on the storefront, ordered by
// position.
func (s *ContentService) ListActiveBanners(ctx context.Context) ([]domain.Banner, error) {
	banners, err := s.bannerRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active banners: %w", err)
	}
	return banners, nil
}

// ListBanners returns all banners, for the admin panel.
func (s *ContentService) ListBanners(ctx context.Context) ([]domain.Banner, error) {
	banners, err := s.bannerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	return banners, nil
}

// CreateBanner adds a carousel banner.
func (s *ContentService) CreateBanner(ctx context.Context, input BannerInput) (*domain.Banner, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("banner title is required")
	}

	now := time.Now().UTC()
	banner := &domain.Banner{
		ID:        uuid.New().String(),
		Title:     input.Title,
		Subtitle:  input.Subtitle,
		ImageURL:  input.ImageURL,
		LinkURL:   input.LinkURL,
		Position:  input.Position,
		Active:    input.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.bannerRepo.Create(ctx, banner); err != nil {
		return nil, fmt.Errorf("create banner: %w", err)
	}

	s.logger.InfoContext(ctx, "banner created",
		slog.String("banner_id", banner.ID),
	)

	return banner, nil
}

// UpdateBanner replaces a banner's fields.
func (s *ContentService) UpdateBanner(ctx context.Context, id string, input BannerInput) (*domain.Banner, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("banner title is required")
	}

	banner := &domain.Banner{
		ID:        id,
		Title:     input.Title,
		Subtitle:  input.Subtitle,
		ImageURL:  input.ImageURL,
		LinkURL:   input.LinkURL,
		Position:  input.Position,
		Active:    input.Active,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.bannerRepo.Update(ctx, banner); err != nil {
		return nil, fmt.Errorf("update banner: %w", err)
	}

	s.logger.InfoContext(ctx, "banner updated",
		slog.String("banner_id", id),
	)

	return banner, nil
}

// DeleteBanner removes a banner.
func (s *ContentService) DeleteBanner(ctx context.Context, id string) error {
	if err := s.bannerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}

	s.logger.InfoContext(ctx, "banner deleted",
		slog.String("banner_id", id),
	)

	return nil
}
