package evidence

import (
	"path"
	"strings"

	"github.com/huangsam/mlscore/schema"
)

// extLanguages maps lowercase file extensions to language labels.
var extLanguages = map[string]string{
	".py":     "Python",
	".ipynb":  "Notebook",
	".c":      "C",
	".cpp":    "C++",
	".cc":     "C++",
	".cxx":    "C++",
	".h":      "C/C++ Header",
	".hpp":    "C/C++ Header",
	".cu":     "CUDA",
	".java":   "Java",
	".kt":     "Kotlin",
	".scala":  "Scala",
	".gradle": "Gradle",
	".js":     "JavaScript",
	".jsx":    "JavaScript",
	".ts":     "TypeScript",
	".tsx":    "TypeScript",
	".sh":     "Shell",
	".ps1":    "PowerShell",
	".r":      "R",
	".jl":     "Julia",
	".go":     "Go",
	".rs":     "Rust",
	".cs":     "C#",
	".php":    "PHP",
	".rb":     "Ruby",
	".swift":  "Swift",
	".m":      "Objective-C_or_MATLAB",
	".mm":     "Objective-C++",
	".pl":     "Perl",
	".tex":    "LaTeX",
}

// packagingFiles are manifest names across ecosystems, lowercased.
var packagingFiles = []string{
	"setup.py", "pyproject.toml", "setup.cfg", "requirements.txt", "package.json",
	"pom.xml", "build.gradle", "gradle.properties", "cargo.toml", "go.mod",
	"description", "environment.yml", "conda.yml", "makefile", "pipfile",
	"poetry.lock", "manifest.in", "__init__.py",
}

// lintFiles are exact lint and formatter configuration paths.
var lintFiles = map[string]struct{}{
	".flake8": {}, "pyproject.toml": {}, "setup.cfg": {}, "tox.ini": {},
	".pylintrc": {}, "pylint.cfg": {}, ".black": {}, ".isort.cfg": {},
	".pre-commit-config.yaml": {}, ".pre-commit-config.yml": {},
	"requirements-dev.txt": {}, "requirements.dev.txt": {},
	".eslintrc": {}, ".eslintrc.json": {}, ".eslintrc.js": {}, ".eslintrc.yaml": {},
	".stylelintrc": {}, ".rubocop.yml": {}, "ruff.toml": {},
}

// testDirs mark test directories anywhere in a path.
var testDirs = []string{"tests/", "test/", "spec/", "example/", "examples/", "test_"}

var testSuffixes = []string{"_test.py", "test.py", "_spec.rb", ".spec.js", ".test.js"}

var ciSuffixes = []string{
	".travis.yml", "travis.yml", "azure-pipelines.yml", "azure-pipelines.yaml",
	"jenkinsfile", "drone.yml", "build.sh", "build.bat",
}

// ClassifyPaths aggregates code-quality evidence from a file listing.
func ClassifyPaths(paths []string) schema.CodeQualityEvidence {
	ev := schema.CodeQualityEvidence{LanguageCounts: map[string]int{}}
	for _, raw := range paths {
		p := cleanPath(raw)
		if p == "" {
			continue
		}
		ev.HasTests = ev.HasTests || isTestPath(p)
		ev.HasCI = ev.HasCI || isCIPath(p)
		ev.HasLintConfig = ev.HasLintConfig || isLintPath(p)
		ev.HasReadme = ev.HasReadme || isReadmePath(p)
		ev.HasPackaging = ev.HasPackaging || isPackagingPath(p)
		if lang, ok := extLanguages[path.Ext(p)]; ok {
			ev.LanguageCounts[lang]++
			ev.TotalCodeFiles++
		}
	}
	return ev
}

// cleanPath lowercases a path and drops leading "./" and "/" prefixes.
// Dot-prefixed names such as ".github" are kept intact.
func cleanPath(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	for {
		switch {
		case strings.HasPrefix(p, "./"):
			p = p[2:]
		case strings.HasPrefix(p, "/"):
			p = p[1:]
		default:
			return p
		}
	}
}

// hasSegment reports whether p starts with seg or contains "/"+seg.
func hasSegment(p, seg string) bool {
	return strings.HasPrefix(p, seg) || strings.Contains(p, "/"+seg)
}

func isTestPath(p string) bool {
	for _, d := range testDirs {
		if hasSegment(p, d) {
			return true
		}
	}
	for _, s := range testSuffixes {
		if strings.HasSuffix(p, s) {
			return true
		}
	}
	return strings.Contains(p, "unittest") || strings.Contains(p, "pytest")
}

func isCIPath(p string) bool {
	if strings.HasPrefix(p, ".github/workflows") || strings.Contains(p, ".circleci/") || hasSegment(p, "ci/") {
		return true
	}
	for _, s := range ciSuffixes {
		if strings.HasSuffix(p, s) {
			return true
		}
	}
	if strings.HasSuffix(p, ".yml") || strings.HasSuffix(p, ".yaml") {
		if containsAny(p, []string{"ci", "build", "deploy"}) {
			return true
		}
	}
	return p == "makefile" || p == "dockerfile"
}

func isLintPath(p string) bool {
	if _, ok := lintFiles[p]; ok {
		return true
	}
	return strings.HasSuffix(p, "lint.py") || strings.HasSuffix(p, "format.py") ||
		strings.Contains(p, "linting") || strings.Contains(p, "formatting")
}

func isReadmePath(p string) bool {
	return strings.HasPrefix(p, "readme") || p == "index.md" || p == "home.md"
}

func isPackagingPath(p string) bool {
	for _, f := range packagingFiles {
		if strings.HasSuffix(p, f) {
			return true
		}
	}
	return false
}
