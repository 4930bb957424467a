package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	t.Parallel()

	info := Current()
	assert.Equal(t, AppName, info.Name)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestAppID(t *testing.T) {
	t.Parallel()

	id := AppID()
	assert.Equal(t, "ledgerbox/"+Version, id)
	assert.NotContains(t, id, " ")
}

func TestIsDevelopment(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDevelopment("dev"))
	assert.True(t, IsDevelopment(""))
	assert.True(t, IsDevelopment("abc123def456"))
	assert.False(t, IsDevelopment("v1.2.3"))
	assert.False(t, IsDevelopment("1.0.0"))
}

func TestCompareVersions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v1       string
		v2       string
		expected int
	}{
		{name: "V1Greater", v1: "1.2.3", v2: "1.2.2", expected: 1},
		{name: "V2Greater", v1: "1.2.2", v2: "1.2.3", expected: -1},
		{name: "Equal", v1: "1.2.3", v2: "1.2.3", expected: 0},
		{name: "MajorVersionDifference", v1: "2.0.0", v2: "1.9.9", expected: 1},
		{name: "MinorVersionDifference", v1: "1.3.0", v2: "1.2.9", expected: 1},
		{name: "WithVPrefix", v1: "v1.2.3", v2: "v1.2.2", expected: 1},
		{name: "MixedVPrefix", v1: "v1.2.3", v2: "1.2.3", expected: 0},
		{name: "DevVersionVsRelease", v1: "dev", v2: "1.2.3", expected: -1},
		{name: "ReleaseVsDevVersion", v1: "1.2.3", v2: "dev", expected: 1},
		{name: "BothDevVersions", v1: "dev", v2: "dev", expected: 0},
		{name: "CommitHashVsRelease", v1: "abc123def456", v2: "1.2.3", expected: -1},
		{name: "ReleaseVsCommitHash", v1: "1.2.3", v2: "abc123def456", expected: 1},
		{name: "EmptyVersionVsRelease", v1: "", v2: "1.2.3", expected: -1},
		{name: "VersionWithSuffix", v1: "1.2.3-rc1", v2: "1.2.3", expected: 0},
		{name: "TwoPartVersion", v1: "1.2", v2: "1.2.0", expected: 0},
		{name: "SinglePartVersion", v1: "2", v2: "1.9.9", expected: 1},
		{name: "PureNumericSevenDigitIsVersion", v1: "1234567", v2: "1.0.0", expected: 1},
		{name: "PureNumericTenDigitIsVersion", v1: "2024010100", v2: "1.0.0", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := CompareVersions(tt.v1, tt.v2)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsNewerVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		currentVersion string
		latestVersion  string
		expected       bool
	}{
		{name: "NewerAvailable", currentVersion: "1.2.2", latestVersion: "1.2.3", expected: true},
		{name: "SameVersion", currentVersion: "1.2.3", latestVersion: "1.2.3", expected: false},
		{name: "CurrentNewer", currentVersion: "1.2.4", latestVersion: "1.2.3", expected: false},
		{name: "DevVersionNeedsUpgrade", currentVersion: "dev", latestVersion: "1.2.3", expected: true},
		{name: "CommitHashNeedsUpgrade", currentVersion: "abc123def456", latestVersion: "1.2.3", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := IsNewerVersion(tt.currentVersion, tt.latestVersion)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalizeVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{name: "WithVPrefix", version: "v1.2.3", expected: "1.2.3"},
		{name: "WithoutVPrefix", version: "1.2.3", expected: "1.2.3"},
		{name: "WithDashSuffix", version: "1.2.3-rc1", expected: "1.2.3"},
		{name: "WithPlusSuffix", version: "1.2.3+build123", expected: "1.2.3"},
		{name: "WithSpaces", version: "  1.2.3  ", expected: "1.2.3"},
		{name: "WithVPrefixAndDirtySuffix", version: "v1.2.3-dirty", expected: "1.2.3"},
		{name: "WithVPrefixAndBuildSuffix", version: "v1.2.3+build456", expected: "1.2.3"},
		{name: "EmptyString", version: "", expected: ""},
		{name: "OnlyV", version: "v", expected: ""},
		{name: "ComplexSuffix", version: "1.2.3-rc1+build.456", expected: "1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := NormalizeVersion(tt.version)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsCommitHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		version  string
		expected bool
	}{
		{name: "ValidShortCommitHash", version: "abc123d", expected: true},
		{name: "ValidLongCommitHash", version: "abc123def456789012345678901234567890abcd", expected: true},
		{name: "ValidHashWithDirtySuffix", version: "abc123d-dirty", expected: true},
		{name: "ValidMixedCaseHash", version: "AbC123DeF456", expected: true},
		{name: "TooShort", version: "abc12", expected: false},
		{name: "TooLong", version: "abc123def456789012345678901234567890abcdef", expected: false},
		{name: "ContainsInvalidCharacters", version: "abc123xyz", expected: false},
		{name: "ContainsSpecialCharacters", version: "abc123-def", expected: false},
		{name: "EmptyString", version: "", expected: false},
		{name: "StandardVersion", version: "1.2.3", expected: false},
		{name: "DevVersion", version: "dev", expected: false},
		{name: "OnlyNumbersSevenDigit", version: "1234567", expected: false},
		{name: "OnlyNumbersTenDigit", version: "1234567890", expected: false},
		{name: "DateBasedVersion", version: "2024010100", expected: false},
		{name: "OnlyValidHexLetters", version: "abcdefabcdef", expected: true},
		{name: "OnlyInvalidLetters", version: "abcdefghijk", expected: false},
		{name: "MixedHexWithNumbers", version: "1a2b3c4d", expected: true},
		{name: "AllZeros", version: "0000000", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := isCommitHash(tt.version)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		version  string
		expected []int
	}{
		{name: "StandardVersion", version: "1.2.3", expected: []int{1, 2, 3}},
		{name: "TwoPartVersion", version: "1.2", expected: []int{1, 2}},
		{name: "SinglePartVersion", version: "1", expected: []int{1}},
		{name: "VersionWithDashSuffix", version: "1.2.3-rc1", expected: []int{1, 2, 3}},
		{name: "VersionWithPlusSuffix", version: "1.2.3+build123", expected: []int{1, 2, 3}},
		{name: "EmptyString", version: "", expected: []int{}},
		{name: "InvalidVersion", version: "abc.def.ghi", expected: []int{}},
		{name: "MixedValidInvalid", version: "1.abc.3", expected: []int{1, 3}},
		{name: "LargeNumbers", version: "999.888.777", expected: []int{999, 888, 777}},
		{name: "ZeroVersion", version: "0.0.0", expected: []int{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := parseVersion(tt.version)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func BenchmarkCompareVersions(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = CompareVersions("1.2.3", "1.2.4")
	}
}
