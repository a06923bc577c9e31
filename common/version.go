package common

import (
	"errors"
	"fmt"
)

const (
	major = 0
	minor = 3
	patch = 0

	// Versions from which stored data can still be read.
	// These should be used in a group (so prevMinor can be equal to minor if there are
	// any migration routines.
	prevMajor = 0
	prevMinor = 2
	prevPatch = 0

	Version = major*1_000_000 + minor*1_000 + patch

	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch
)

// ErrVersionMismatch is returned by CheckVersion for data written by an
// unsupported layout version.
var ErrVersionMismatch = errors.New("previous version mismatch")

// CheckVersion checks that data written with version from can be read by the
// current layout: it must be at least PrevVersion and not newer than Version.
func CheckVersion(from int) error {
	if from < PrevVersion {
		return fmt.Errorf("%w: expected >=%d, got %d", ErrVersionMismatch, PrevVersion, from)
	}
	if from > Version {
		return fmt.Errorf("%w: written by newer version %d (current %d)", ErrVersionMismatch, from, Version)
	}
	return nil
}

// VersionString returns Version in the major.minor.patch form.
func VersionString() string {
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}
