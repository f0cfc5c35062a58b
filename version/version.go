// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package version reports the lazydoc version. The values are plain
// constants, overridable at link time with -ldflags "-X".
package version

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// Version is the main version number that is being run at the moment.
var Version = "0.3.0"

// Prerelease is a pre-release marker for the version. If this is "" (empty
// string) then it means that it is a final release. Otherwise, this is a
// pre-release such as "dev" (in development), "beta", "rc1", etc.
var Prerelease = "dev"

// SemVer is an instance of version.Version built from Version. It panics
// at package initialization if Version is not valid semver.
var SemVer *goversion.Version

func init() {
	SemVer = goversion.Must(goversion.NewVersion(Version))
}

// String returns the complete version string, including prerelease.
func String() string {
	if Prerelease != "" {
		return fmt.Sprintf("%s-%s", Version, Prerelease)
	}
	return Version
}
