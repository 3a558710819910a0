package service

import (
	"context"
	"errors"
	"testing"

	"guide-exam/internal/adapter"
	"guide-exam/internal/catalog"
	"guide-exam/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func TestPreferenceService_SelectedRegion_DefaultsWhenUnset(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	svc := NewPreferenceService(testCatalog(t), adapter.NewRedisCacheAdapter(db))

	redisMock.ExpectGet("guideexam:preference:region:device:d1").RedisNil()

	pref, err := svc.SelectedRegion(context.Background(), domain.Owner{DeviceID: "d1"})
	require.NoError(t, err)
	assert.Equal(t, "beijing", pref.Region.ID)
	assert.Equal(t, "北京", pref.Region.Name)
	assert.True(t, pref.IsDefault)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestPreferenceService_SelectThenRead(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	svc := NewPreferenceService(testCatalog(t), adapter.NewRedisCacheAdapter(db))
	ctx := context.Background()
	owner := domain.Owner{UserID: "user-1"}

	redisMock.ExpectSet("guideexam:preference:region:user:user-1", "shaanxi", 0).SetVal("OK")
	pref, err := svc.SelectRegion(ctx, owner, "shaanxi")
	require.NoError(t, err)
	assert.Equal(t, "shaanxi", pref.Region.ID)
	assert.False(t, pref.IsDefault)

	redisMock.ExpectGet("guideexam:preference:region:user:user-1").SetVal("shaanxi")
	pref, err = svc.SelectedRegion(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "shaanxi", pref.Region.ID)
	assert.False(t, pref.IsDefault)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestPreferenceService_UnknownRegions(t *testing.T) {
	cache := new(MockCache)
	svc := NewPreferenceService(testCatalog(t), cache)
	ctx := context.Background()
	owner := domain.Owner{DeviceID: "d1"}

	_, err := svc.SelectRegion(ctx, owner, "atlantis")
	assertCode(t, err, domain.CodeInvalidInput)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	cache.On("Get", mock.Anything, "guideexam:preference:region:device:d1").Return("atlantis", nil).Once()
	pref, err := svc.SelectedRegion(ctx, owner)
	require.NoError(t, err)
	assert.True(t, pref.IsDefault)

	cache.On("Get", mock.Anything, "guideexam:preference:region:device:d1").Return("", errors.New("connection refused")).Once()
	pref, err = svc.SelectedRegion(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "beijing", pref.Region.ID)
}

func TestPreferenceService_Regions(t *testing.T) {
	svc := NewPreferenceService(testCatalog(t), new(MockCache))

	regions := svc.Regions(context.Background())
	require.NotEmpty(t, regions)
	assert.Equal(t, "beijing", regions[0].ID)
	assert.Equal(t, "quanguo", regions[len(regions)-1].ID)
}
