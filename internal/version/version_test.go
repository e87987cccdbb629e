// ABOUTME: Tests for version constants
// ABOUTME: Checks the release version shape and the device info strings
package version

import (
	"regexp"
	"strings"
	"testing"
)

var semver = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(-[0-9A-Za-z.-]+)?$`)

func TestVersionIsSemver(t *testing.T) {
	if !semver.MatchString(Version) {
		t.Errorf("expected a semantic version, got %q", Version)
	}
	if strings.HasPrefix(Version, "v") {
		t.Errorf("expected no leading v in %q", Version)
	}
}

func TestDeviceInfoStrings(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"product", Product, "Scrub Go"},
		{"manufacturer", Manufacturer, "Sendspin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.value)
			}
			if strings.TrimSpace(tt.value) != tt.value {
				t.Errorf("expected no surrounding whitespace in %q", tt.value)
			}
		})
	}
}
