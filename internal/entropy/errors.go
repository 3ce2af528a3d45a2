package entropy

import "github.com/loxxous/Jampack/internal/jamerr"

var errTruncated = jamerr.IO("entropy: sub-block truncated")
