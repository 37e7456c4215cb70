// Package cpu provides CPU feature detection for gate kernel selection.
//
// It reports the SIMD extensions (SSE2, AVX, AVX2, AVX-512, NEON) available
// on the current processor together with the widest vector register width,
// which drives both backend dispatch and the default buffer alignment.
//
// Detection runs lazily on the first call to DetectFeatures and is cached.
package cpu

import (
	"sync"
)

// SIMDLevel represents a SIMD instruction set extension level.
// Levels are not strictly comparable across architectures (e.g. AVX2 vs NEON).
type SIMDLevel int

const (
	// SIMDNone indicates no SIMD optimization (pure Go fallback).
	SIMDNone SIMDLevel = iota

	// SIMDSSE2 indicates x86-64 SSE2 (baseline for amd64).
	SIMDSSE2

	// SIMDAVX indicates x86-64 AVX (256-bit float vectors).
	SIMDAVX

	// SIMDAVX2 indicates x86-64 AVX2.
	SIMDAVX2

	// SIMDAVX512 indicates x86-64 AVX-512 Foundation.
	SIMDAVX512

	// SIMDNEON indicates ARM NEON / Advanced SIMD.
	SIMDNEON
)

// String returns a human-readable name for the SIMD level.
func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX:
		return "AVX"
	case SIMDAVX2:
		return "AVX2"
	case SIMDAVX512:
		return "AVX-512"
	case SIMDNEON:
		return "NEON"
	default:
		return "Unknown"
	}
}

// Features describes CPU capabilities relevant to kernel selection.
type Features struct {
	// x86/amd64 SIMD features
	HasSSE2   bool
	HasAVX    bool
	HasAVX2   bool
	HasFMA    bool
	HasAVX512 bool

	// ARM SIMD features
	HasNEON bool

	// ForceGeneric disables all SIMD backends (for testing/debugging).
	ForceGeneric bool

	// Architecture is runtime.GOARCH (e.g. "amd64", "arm64").
	Architecture string
}

// VectorBytes returns the width in bytes of the widest vector register the
// features allow. It never returns less than 16, the size of one complex128.
func (f Features) VectorBytes() int {
	switch {
	case f.ForceGeneric:
		return 16
	case f.HasAVX512:
		return 64
	case f.HasAVX, f.HasAVX2:
		return 32
	default:
		return 16
	}
}

var (
	detectedFeatures Features
	detectOnce       sync.Once
	detectMutex      sync.Mutex

	// forcedFeatures overrides hardware detection in tests.
	forcedFeatures *Features
	forcedMutex    sync.RWMutex
)

// DetectFeatures returns the CPU features available on the current system.
// It is safe for concurrent use.
func DetectFeatures() Features {
	forcedMutex.RLock()
	forced := forcedFeatures
	forcedMutex.RUnlock()

	if forced != nil {
		return *forced
	}

	detectMutex.Lock()
	detectOnce.Do(func() {
		detectedFeatures = detectFeaturesImpl()
	})
	features := detectedFeatures
	detectMutex.Unlock()

	return features
}

// SetForcedFeatures overrides CPU feature detection with f.
// This is intended for testing purposes only.
func SetForcedFeatures(f Features) {
	forcedMutex.Lock()
	defer forcedMutex.Unlock()
	forced := f
	forcedFeatures = &forced
}

// ResetDetection clears any forced features and the detection cache.
func ResetDetection() {
	forcedMutex.Lock()
	forcedFeatures = nil
	forcedMutex.Unlock()

	detectMutex.Lock()
	detectOnce = sync.Once{}
	detectedFeatures = Features{}
	detectMutex.Unlock()
}

// Supports reports whether features allow code compiled for level.
func Supports(features Features, level SIMDLevel) bool {
	if features.ForceGeneric {
		return level == SIMDNone
	}

	switch level {
	case SIMDNone:
		return true
	case SIMDSSE2:
		return features.HasSSE2
	case SIMDAVX:
		return features.HasAVX
	case SIMDAVX2:
		return features.HasAVX2
	case SIMDAVX512:
		return features.HasAVX512
	case SIMDNEON:
		return features.HasNEON
	default:
		return false
	}
}
