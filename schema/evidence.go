package schema

// LicenseEvidence carries the normalized license identifier of an artifact.
type LicenseEvidence struct {
	License string `json:"license"` // lowercased, "" when absent
}

// BusFactorEvidence carries the distinct contributors seen in commit history.
type BusFactorEvidence struct {
	CommitAuthors []string `json:"commit_authors"`
}

// CodeQualityEvidence summarizes the file listing of an artifact.
type CodeQualityEvidence struct {
	HasTests       bool           `json:"has_tests"`
	HasCI          bool           `json:"has_ci"`
	HasLintConfig  bool           `json:"has_lint_config"`
	LanguageCounts map[string]int `json:"language_counts"`
	TotalCodeFiles int            `json:"total_code_files"`
	HasReadme      bool           `json:"has_readme"`
	HasPackaging   bool           `json:"has_packaging"`
}

// Sparse reports whether the listing carries no structural signal. A README alone
// does not count.
func (e CodeQualityEvidence) Sparse() bool {
	return len(e.LanguageCounts) == 0 &&
		!e.HasTests && !e.HasCI && !e.HasLintConfig && !e.HasPackaging
}

// DatasetQualityEvidence carries the signals of dataset documentation and linkage.
type DatasetQualityEvidence struct {
	DatasetURL         string `json:"dataset_url"`
	CodeURL            string `json:"code_url"`
	Description        string `json:"description"`
	HasReadme          bool   `json:"has_readme"`
	HasExamples        bool   `json:"has_examples"`
	MLIntegration      bool   `json:"ml_integration"`
	TransformersConfig bool   `json:"transformers_config"`
	Downloads          int64  `json:"downloads"`
	Likes              int64  `json:"likes"`
}

// DatasetAndCodeEvidence carries documentation, examples and engagement signals.
type DatasetAndCodeEvidence struct {
	Kind             ArtifactKind `json:"kind"`
	Description      string       `json:"description"`
	HasDocumentation bool         `json:"has_documentation"`
	HasCodeExamples  bool         `json:"has_code_examples"`
	MLIntegration    bool         `json:"ml_integration"`
	ExampleCount     int64        `json:"example_count"`
	License          string       `json:"license"`
	Downloads        int64        `json:"downloads"`
	Likes            int64        `json:"likes"`
}

// PerformanceEvidence carries evaluation results and popularity signals.
type PerformanceEvidence struct {
	Kind           ArtifactKind `json:"kind"`
	ModelIndex     int          `json:"model_index"`      // entries in the top-level model index
	ResultCount    int          `json:"result_count"`     // results across those entries
	CardModelIndex bool         `json:"card_model_index"` // model index found only in the card
	EvalTags       bool         `json:"eval_tags"`
	Downloads      int64        `json:"downloads"`
	Likes          int64        `json:"likes"`
}

// RampUpEvidence carries the signals of how fast a newcomer can get started.
type RampUpEvidence struct {
	Kind                ArtifactKind `json:"kind"`
	Description         string       `json:"description"`
	KnownFamily         bool         `json:"known_family"`
	HasDocFile          bool         `json:"has_doc_file"`
	HasQuickStart       bool         `json:"has_quick_start"`
	HasInstall          bool         `json:"has_install"`
	HasRunnableExamples bool         `json:"has_runnable_examples"`
	MinimalDeps         bool         `json:"minimal_deps"`
	SizeClass           SizeClass    `json:"size_class"`
}

// SizeEvidence carries the artifact size in megabytes.
// The zero value means the size is unknown.
type SizeEvidence struct {
	Known  bool    `json:"known"`
	SizeMB float64 `json:"model_size_mb"`
}

// KnownSize returns evidence for a measured size. Non-positive sizes are unknown.
func KnownSize(mb float64) SizeEvidence {
	if mb <= 0 {
		return SizeEvidence{}
	}
	return SizeEvidence{Known: true, SizeMB: mb}
}

// Evidence is the full set of evidence records of one artifact.
type Evidence struct {
	Kind              ArtifactKind           `json:"kind"`
	License           LicenseEvidence        `json:"license"`
	BusFactor         BusFactorEvidence      `json:"bus_factor"`
	CodeQuality       CodeQualityEvidence    `json:"code_quality"`
	DatasetQuality    DatasetQualityEvidence `json:"dataset_quality"`
	DatasetAndCode    DatasetAndCodeEvidence `json:"dataset_and_code"`
	PerformanceClaims PerformanceEvidence    `json:"performance_claims"`
	RampUp            RampUpEvidence         `json:"ramp_up_time"`
	Size              SizeEvidence           `json:"size_score"`
}
