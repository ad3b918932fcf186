package schema

// Custom string types for type safety.
type (
	// ArtifactKind selects which normalizer branch runs for an artifact.
	ArtifactKind string

	// Dimension represents one scoring axis of the report.
	Dimension string

	// DeviceTier represents a hardware tier of the size dimension.
	DeviceTier string

	// SizeClass is the coarse model-size bucket used by ramp-up scoring.
	SizeClass string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and storage.
	DatabaseBackend string
)

// All artifact kinds supported.
const (
	ModelKind   ArtifactKind = "model"
	DatasetKind ArtifactKind = "dataset"
	CodeKind    ArtifactKind = "code"
	UnknownKind ArtifactKind = "unknown" // unclassified URL
)

// Dimensions computed by the scoring pipeline.
const (
	LicenseDim           Dimension = "license"
	BusFactorDim         Dimension = "bus_factor"
	CodeQualityDim       Dimension = "code_quality"
	DatasetQualityDim    Dimension = "dataset_quality"
	DatasetAndCodeDim    Dimension = "dataset_and_code"
	PerformanceClaimsDim Dimension = "performance_claims"
	RampUpTimeDim        Dimension = "ramp_up_time"
	SizeDim              Dimension = "size_score"
)

// Advisory dimensions reported with a neutral placeholder.
const (
	ReproducibilityDim Dimension = "reproducibility"
	ReviewednessDim    Dimension = "reviewedness"
	TreeScoreDim       Dimension = "tree_score"
)

// Device tiers of the size dimension, smallest first.
const (
	RaspberryPi DeviceTier = "raspberry_pi"
	JetsonNano  DeviceTier = "jetson_nano"
	DesktopPC   DeviceTier = "desktop_pc"
	AWSServer   DeviceTier = "aws_server"
)

// Model size classes.
const (
	SmallModel  SizeClass = "small"
	MediumModel SizeClass = "medium" // default
	LargeModel  SizeClass = "large"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	NDJSONOut  OutputMode = "ndjson"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // cache only
	NoneBackend       DatabaseBackend = "none"
)

// PlaceholderScore is the neutral value reported for advisory dimensions.
const PlaceholderScore = 0.5

// AllDimensions lists the eight computed dimensions in report order.
var AllDimensions = []Dimension{
	LicenseDim,
	BusFactorDim,
	CodeQualityDim,
	DatasetQualityDim,
	DatasetAndCodeDim,
	PerformanceClaimsDim,
	RampUpTimeDim,
	SizeDim,
}

// PlaceholderDimensions lists the advisory dimensions in report order.
var PlaceholderDimensions = []Dimension{ReproducibilityDim, ReviewednessDim, TreeScoreDim}

// AllDevices lists the device tiers in ascending capacity.
var AllDevices = []DeviceTier{RaspberryPi, JetsonNano, DesktopPC, AWSServer}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	NDJSONOut:  {},
	ParquetOut: {},
}

// ValidDimensions lists all computed dimensions.
var ValidDimensions = map[Dimension]struct{}{
	LicenseDim:           {},
	BusFactorDim:         {},
	CodeQualityDim:       {},
	DatasetQualityDim:    {},
	DatasetAndCodeDim:    {},
	PerformanceClaimsDim: {},
	RampUpTimeDim:        {},
	SizeDim:              {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidStoreBackends lists all valid artifact store backends.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetDefaultWeights returns the default weight of every computed dimension.
func GetDefaultWeights() map[Dimension]float64 {
	return map[Dimension]float64{
		LicenseDim:           0.15,
		BusFactorDim:         0.15,
		CodeQualityDim:       0.10,
		DatasetQualityDim:    0.10,
		DatasetAndCodeDim:    0.10,
		PerformanceClaimsDim: 0.10,
		RampUpTimeDim:        0.15,
		SizeDim:              0.15,
	}
}

// GetDefaultDeviceLimits returns the memory budget in MB of every device tier.
func GetDefaultDeviceLimits() map[DeviceTier]float64 {
	return map[DeviceTier]float64{
		RaspberryPi: 100,
		JetsonNano:  200,
		DesktopPC:   8000,
		AWSServer:   50000,
	}
}
