package schema

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDefaultWeightsSumToOne(t *testing.T) {
	weights := GetDefaultWeights()
	assert.Len(t, weights, len(AllDimensions))

	total := decimal.Zero
	for _, dim := range AllDimensions {
		w, ok := weights[dim]
		assert.True(t, ok, "missing weight for %s", dim)
		total = total.Add(decimal.NewFromFloat(w))
	}
	assert.True(t, total.Equal(decimal.NewFromInt(1)), "total is %s", total)
}

func TestDimensionLists(t *testing.T) {
	assert.Len(t, ValidDimensions, len(AllDimensions))
	for _, dim := range AllDimensions {
		assert.Contains(t, ValidDimensions, dim)
	}
	for _, dim := range PlaceholderDimensions {
		assert.NotContains(t, ValidDimensions, dim)
	}
}

func TestDefaultDeviceLimitsAscend(t *testing.T) {
	limits := GetDefaultDeviceLimits()
	assert.Equal(t, 100.0, limits[RaspberryPi])
	assert.Equal(t, 50000.0, limits[AWSServer])
	for i := 1; i < len(AllDevices); i++ {
		assert.Less(t, limits[AllDevices[i-1]], limits[AllDevices[i]])
	}
}

func TestBackendLists(t *testing.T) {
	assert.Contains(t, ValidCacheBackends, RedisBackend)
	assert.NotContains(t, ValidStoreBackends, RedisBackend)
	assert.Contains(t, ValidStoreBackends, NoneBackend)
}

func TestRawMetadataError(t *testing.T) {
	ok := RawMetadata{Payload: map[string]any{"id": "bert"}}
	assert.False(t, ok.HasError())
	assert.Equal(t, "", ok.ErrorMessage())

	failed := RawMetadata{Payload: ErrorPayload("status 404")}
	assert.True(t, failed.HasError())
	assert.Equal(t, "status 404", failed.ErrorMessage())

	assert.Equal(t, "", RawMetadata{}.ErrorMessage())
}

func TestSizeScoreGetSet(t *testing.T) {
	var s SizeScore
	for i, tier := range AllDevices {
		s.Set(tier, NewFixed(float64(i)/4))
	}
	assert.Equal(t, "0.25", s.Get(JetsonNano).String())
	assert.Equal(t, "0.75", s.AWSServer.String())
	assert.True(t, s.Get(DeviceTier("mainframe")).Equal(Fixed{}))
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "DATASET", ArtifactRecord{Kind: DatasetKind}.KindLabel())
}
