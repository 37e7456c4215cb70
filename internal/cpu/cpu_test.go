package cpu

import "testing"

func TestSupports(t *testing.T) {
	tests := []struct {
		name     string
		features Features
		level    SIMDLevel
		want     bool
	}{
		{"none always", Features{}, SIMDNone, true},
		{"avx2 present", Features{HasSSE2: true, HasAVX2: true}, SIMDAVX2, true},
		{"avx2 missing", Features{HasSSE2: true}, SIMDAVX2, false},
		{"neon present", Features{HasNEON: true}, SIMDNEON, true},
		{"forced generic", Features{HasAVX2: true, ForceGeneric: true}, SIMDAVX2, false},
		{"forced generic none", Features{HasAVX2: true, ForceGeneric: true}, SIMDNone, true},
		{"unknown", Features{HasAVX2: true}, SIMDLevel(99), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Supports(tt.features, tt.level); got != tt.want {
				t.Fatalf("Supports(%+v, %s) = %v, want %v", tt.features, tt.level, got, tt.want)
			}
		})
	}
}

func TestVectorBytes(t *testing.T) {
	tests := []struct {
		features Features
		want     int
	}{
		{Features{}, 16},
		{Features{HasSSE2: true}, 16},
		{Features{HasSSE2: true, HasAVX: true}, 32},
		{Features{HasSSE2: true, HasAVX: true, HasAVX2: true}, 32},
		{Features{HasAVX2: true, HasAVX512: true}, 64},
		{Features{HasAVX512: true, ForceGeneric: true}, 16},
		{Features{HasNEON: true}, 16},
	}

	for _, tt := range tests {
		if got := tt.features.VectorBytes(); got != tt.want {
			t.Errorf("VectorBytes(%+v) = %d, want %d", tt.features, got, tt.want)
		}
	}
}

func TestForcedFeatures(t *testing.T) {
	defer ResetDetection()

	SetForcedFeatures(Features{ForceGeneric: true, Architecture: "test"})
	got := DetectFeatures()
	if !got.ForceGeneric || got.Architecture != "test" {
		t.Fatalf("DetectFeatures() = %+v, want forced features", got)
	}

	ResetDetection()
	if DetectFeatures().ForceGeneric {
		t.Fatal("ForceGeneric still set after ResetDetection")
	}
}

func TestSIMDLevelString(t *testing.T) {
	if SIMDAVX2.String() != "AVX2" {
		t.Fatalf("SIMDAVX2.String() = %q", SIMDAVX2.String())
	}
	if SIMDLevel(42).String() != "Unknown" {
		t.Fatalf("SIMDLevel(42).String() = %q", SIMDLevel(42).String())
	}
}
