package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{
			name:     "smallest value possible",
			input:    0.0,
			expected: WeakValue,
		},
		{
			name:     "just before fair",
			input:    0.39,
			expected: WeakValue,
		},
		{
			name:     "exactly fair",
			input:    0.4,
			expected: FairValue,
		},
		{
			name:     "exactly good",
			input:    0.6,
			expected: GoodValue,
		},
		{
			name:     "just before strong",
			input:    0.79,
			expected: GoodValue,
		},
		{
			name:     "perfect score",
			input:    1.0,
			expected: StrongValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.input))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		label string
	}{
		{"weak", 0.1, WeakValue},
		{"fair", 0.5, FairValue},
		{"good", 0.7, GoodValue},
		{"strong", 0.9, StrongValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColorLabel(tt.score)
			// Should contain the plain label
			assert.Contains(t, result, tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		// Verify file was created
		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestReadURLList(t *testing.T) {
	input := "https://a\n# comment\n\n   https://b  \n"
	urls, err := ReadURLList(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a", "https://b"}, urls)

	urls, err = ReadURLList(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestGetDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	storePath := GetStoreDBFilePath()
	assert.Contains(t, cachePath, ".mlscore_cache.db")
	assert.Contains(t, storePath, ".mlscore_store.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir), "path %s should start with home dir %s", cachePath, homeDir)
	assert.NotEqual(t, cachePath, storePath)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "https:/...", TruncateText("https://huggingface.co/gpt2", 10))
	assert.Equal(t, "abcdef", TruncateText("abcdef", 3))
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
