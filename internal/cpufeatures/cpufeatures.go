// Package cpufeatures is a cached runtime check of whether this machine
// supports the wide-word match-length comparison trick (comparing 8
// bytes at a time via XOR-and-count-zeros rather than a byte loop),
// gated on golang.org/x/sys/cpu's feature flags.
package cpufeatures

import (
	"sync"

	"golang.org/x/sys/cpu"
)

var wideCompare = sync.OnceValue(detectWideCompare)

// WideCompareSupported reports whether the host CPU can safely do
// unaligned 64-bit loads, the precondition for a word-at-a-time match
// extender. flate's matchLength compares a byte at a time and does not
// consult it; cmd/deflatebench only logs the result. The probe runs once
// per process and is cached.
func WideCompareSupported() bool {
	return wideCompare()
}

func detectWideCompare() bool {
	switch {
	case cpu.X86.HasSSE2:
		return true
	case cpu.ARM64.HasASIMD:
		return true
	default:
		return false
	}
}
