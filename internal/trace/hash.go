package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeReportHash computes the deterministic hash of a canonical report
// encoding.
//
// Requirements:
//   - Must cover the full canonical event sequence.
//   - Must be stable across architectures/compilers.
//
// This function assumes the input bytes are already a canonical encoding
// (e.g. from RunReport.CanonicalJSON()).
func ComputeReportHash(canonicalEncoding []byte) string {
	if len(canonicalEncoding) == 0 {
		return ""
	}
	sum := sha256.Sum256(canonicalEncoding)
	return hex.EncodeToString(sum[:])
}
