package service

import (
	"context"
	"errors"
	"fmt"

	"guide-exam/internal/cache"
	"guide-exam/internal/catalog"
	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"

	"go.uber.org/zap"
)

// PreferenceService stores per-owner settings, currently the selected practice region.
type PreferenceService interface {
	Regions(ctx context.Context) []dto.RegionResponse
	SelectedRegion(ctx context.Context, owner domain.Owner) (*dto.RegionPreferenceResponse, error)
	SelectRegion(ctx context.Context, owner domain.Owner, regionID string) (*dto.RegionPreferenceResponse, error)
}

type preferenceService struct {
	catalog *catalog.Catalog
	cache   domain.Cache
}

func NewPreferenceService(c *catalog.Catalog, cache domain.Cache) PreferenceService {
	return &preferenceService{catalog: c, cache: cache}
}

func regionKey(owner domain.Owner) string {
	return cache.GenerateCacheKey(cache.ServicePreference, cache.TypeRegion, owner.Key())
}

func (s *preferenceService) Regions(ctx context.Context) []dto.RegionResponse {
	regions := make([]dto.RegionResponse, 0, len(s.catalog.Regions))
	for _, r := range s.catalog.Regions {
		regions = append(regions, toRegionResponse(r))
	}
	return regions
}

// SelectedRegion falls back to the default region when nothing valid is stored.
// A failing cache is logged and treated like an unset preference.
func (s *preferenceService) SelectedRegion(ctx context.Context, owner domain.Owner) (*dto.RegionPreferenceResponse, error) {
	fallback := &dto.RegionPreferenceResponse{
		Region:    toRegionResponse(s.catalog.DefaultRegion()),
		IsDefault: true,
	}
	if owner.IsZero() {
		return fallback, nil
	}

	regionID, err := s.cache.Get(ctx, regionKey(owner))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("PreferenceService: failed to read region preference", zap.String("owner", owner.Key()), zap.Error(err))
		}
		return fallback, nil
	}
	region, ok := s.catalog.RegionByID(regionID)
	if !ok {
		logger.Get().Warn("PreferenceService: stored region no longer exists", zap.String("owner", owner.Key()), zap.String("region_id", regionID))
		return fallback, nil
	}
	return &dto.RegionPreferenceResponse{Region: toRegionResponse(region)}, nil
}

// SelectRegion stores the choice without expiry.
func (s *preferenceService) SelectRegion(ctx context.Context, owner domain.Owner, regionID string) (*dto.RegionPreferenceResponse, error) {
	region, ok := s.catalog.RegionByID(regionID)
	if !ok {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("Unknown region: %s", regionID))
	}
	if err := s.cache.Set(ctx, regionKey(owner), region.ID, 0); err != nil {
		return nil, domain.NewInternalError("Failed to save region preference", err)
	}
	return &dto.RegionPreferenceResponse{
		Region:    toRegionResponse(region),
		IsDefault: region.ID == s.catalog.DefaultRegion().ID,
	}, nil
}

func toRegionResponse(r *domain.Region) dto.RegionResponse {
	return dto.RegionResponse{ID: r.ID, Name: r.Name}
}
