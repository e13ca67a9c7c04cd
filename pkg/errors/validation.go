package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidatePositive checks that a named scalar is finite and strictly positive.
// Diffusion coefficients and the diffusion time all go through here.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidParams, "%s must be finite, got %g", name, v)
	}
	if v <= 0 {
		return New(ErrCodeInvalidParams, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateOrientationCount checks a requested number of orientations.
func ValidateOrientationCount(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidOrientations, "orientation count must be at least 1, got %d", n)
	}
	const maxOrientations = 4096
	if n > maxOrientations {
		return New(ErrCodeInvalidOrientations, "orientation count too large (max %d), got %d", maxOrientations, n)
	}
	return nil
}

// ValidateWorkers checks a worker-count hint. Zero means "all CPUs".
func ValidateWorkers(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "workers must be >= 0, got %d", n)
	}
	return nil
}

// ValidateOutputPath validates a file path the CLI is about to write.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Extension must be one of allowed (case-insensitive), when allowed is non-empty
func ValidateOutputPath(path string, allowed ...string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if len(allowed) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported file extension %q (must be one of: %s)", ext, strings.Join(allowed, ", "))
}
