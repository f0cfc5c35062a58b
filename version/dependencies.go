// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package version

import "runtime/debug"

// The storage SDKs are the dependencies whose behavior most often explains
// a bug report, so these are the ones worth putting in a debug log.
var interestingDependencies = map[string]struct{}{
	"cloud.google.com/go/storage":                          {},
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob": {},
	"github.com/aws/aws-sdk-go-v2/service/s3":              {},
	"github.com/hashicorp/consul/api":                      {},
	"github.com/hashicorp/go-retryablehttp":                {},
	"github.com/openbao/openbao/api/v2":                    {},
	"github.com/lib/pq":                                    {},
	"github.com/spf13/afero":                               {},
	"golang.org/x/crypto":                                  {},
	"k8s.io/client-go":                                     {},
}

// InterestingDependencies returns the compiled-in module version info for
// the storage client libraries that lazydoc's remote backends are built
// on, for cross-referencing bug reports with dependency changelogs.
func InterestingDependencies() []*debug.Module {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		// Weird to not be built in module mode, but not a big deal.
		return nil
	}

	ret := make([]*debug.Module, 0, len(interestingDependencies))

	for _, mod := range info.Deps {
		if _, ok := interestingDependencies[mod.Path]; !ok {
			continue
		}
		if mod.Replace != nil {
			mod = mod.Replace
		}
		ret = append(ret, mod)
	}

	return ret
}
