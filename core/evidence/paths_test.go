package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPaths(t *testing.T) {
	paths := []string{
		"README.md",
		"setup.py",
		".github/workflows/ci.yml",
		".pre-commit-config.yaml",
		"src/model.py",
		"src/kernels/attn.cu",
		"web/app.tsx",
		"tests/test_model.py",
		"",
	}

	ev := ClassifyPaths(paths)
	assert.True(t, ev.HasReadme)
	assert.True(t, ev.HasPackaging)
	assert.True(t, ev.HasCI)
	assert.True(t, ev.HasLintConfig)
	assert.True(t, ev.HasTests)
	assert.Equal(t, map[string]int{"Python": 3, "CUDA": 1, "TypeScript": 1}, ev.LanguageCounts)
	assert.Equal(t, 5, ev.TotalCodeFiles)
	assert.False(t, ev.Sparse())
}

func TestClassifyPathsEmpty(t *testing.T) {
	ev := ClassifyPaths(nil)
	assert.NotNil(t, ev.LanguageCounts)
	assert.Empty(t, ev.LanguageCounts)
	assert.Zero(t, ev.TotalCodeFiles)
	assert.True(t, ev.Sparse())
}

func TestClassifyPathsModelWeights(t *testing.T) {
	// Typical model repository: weights and configs only
	ev := ClassifyPaths([]string{"config.json", "model.safetensors", "tokenizer.json", "README.md", ".gitattributes"})
	assert.True(t, ev.HasReadme)
	assert.False(t, ev.HasTests)
	assert.False(t, ev.HasPackaging)
	assert.True(t, ev.Sparse())
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"./src/Main.py", "src/main.py"},
		{"/abs/path", "abs/path"},
		{".github/workflows/ci.yml", ".github/workflows/ci.yml"},
		{"././x", "x"},
		{"  README  ", "readme"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanPath(tt.in), tt.in)
	}
}

func TestPathClassifiers(t *testing.T) {
	assert.True(t, isTestPath("pkg/test/helpers.go"))
	assert.True(t, isTestPath("lib/foo.spec.js"))
	assert.True(t, isTestPath("examples/run.py"))
	assert.False(t, isTestPath("src/main.go"))

	assert.True(t, isCIPath("makefile"))
	assert.True(t, isCIPath(".circleci/config.yml"))
	assert.True(t, isCIPath("jenkinsfile"))
	assert.False(t, isCIPath("data/train.csv"))

	assert.True(t, isLintPath("ruff.toml"))
	assert.True(t, isLintPath("scripts/lint.py"))
	assert.False(t, isLintPath("src/app.js"))

	assert.True(t, isPackagingPath("cargo.toml"))
	assert.True(t, isPackagingPath("pkg/__init__.py"))
	assert.False(t, isPackagingPath("weights.bin"))
}
