package iocache

import (
	"regexp"
	"time"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetCacheStore implements the StoreManager interface.
func (m *MockStoreManager) GetCacheStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetArtifactStore implements the StoreManager interface.
func (m *MockStoreManager) GetArtifactStore() contract.ArtifactStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ArtifactStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockArtifactStore is a mock implementation of ArtifactStore for testing.
type MockArtifactStore struct {
	mock.Mock
}

var _ contract.ArtifactStore = &MockArtifactStore{} // Compile-time check

// BeginRun implements the ArtifactStore interface.
func (m *MockArtifactStore) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the ArtifactStore interface.
func (m *MockArtifactStore) EndRun(runID int64, endTime time.Time, totalURLs int) error {
	args := m.Called(runID, endTime, totalURLs)
	return args.Error(0)
}

// SaveArtifact implements the ArtifactStore interface.
func (m *MockArtifactStore) SaveArtifact(runID int64, record schema.ArtifactRecord) error {
	args := m.Called(runID, record)
	return args.Error(0)
}

// GetArtifact implements the ArtifactStore interface.
func (m *MockArtifactStore) GetArtifact(id string) (schema.ArtifactRecord, error) {
	args := m.Called(id)
	return args.Get(0).(schema.ArtifactRecord), args.Error(1)
}

// ListArtifacts implements the ArtifactStore interface.
func (m *MockArtifactStore) ListArtifacts(limit int) ([]schema.ArtifactRecord, error) {
	args := m.Called(limit)
	records, _ := args.Get(0).([]schema.ArtifactRecord)
	return records, args.Error(1)
}

// FindByName implements the ArtifactStore interface.
func (m *MockArtifactStore) FindByName(pattern *regexp.Regexp) ([]schema.ArtifactRecord, error) {
	args := m.Called(pattern)
	records, _ := args.Get(0).([]schema.ArtifactRecord)
	return records, args.Error(1)
}

// DeleteArtifact implements the ArtifactStore interface.
func (m *MockArtifactStore) DeleteArtifact(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// ListRuns implements the ArtifactStore interface.
func (m *MockArtifactStore) ListRuns() ([]schema.ScoreRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.ScoreRunRecord)
	return runs, args.Error(1)
}

// GetStatus implements the ArtifactStore interface.
func (m *MockArtifactStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the ArtifactStore interface.
func (m *MockArtifactStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
