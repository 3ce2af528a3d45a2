// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack

import "github.com/loxxous/Jampack/internal/jamerr"

// The error taxonomy lives in internal/jamerr so that stage packages
// below this one can raise it without creating an import cycle; these
// are plain aliases so callers only need to import the root package.
type (
	FormatError    = jamerr.FormatError
	IntegrityError = jamerr.IntegrityError
	InvariantError = jamerr.InvariantError
	ResourceError  = jamerr.ResourceError
)
