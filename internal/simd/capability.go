package simd

import (
	"os"
	"strings"
)

// ISA identifies the kernel family in use.
type ISA uint8

const (
	Generic ISA = iota
	NEON
	SVE2
	AVX2
	AVX512
)

var isaNames = [...]string{
	Generic: "generic",
	NEON:    "neon",
	SVE2:    "sve2",
	AVX2:    "avx2",
	AVX512:  "avx512",
}

func (i ISA) String() string {
	if int(i) < len(isaNames) {
		return isaNames[i]
	}
	return "unknown"
}

// ParseISA parses the names accepted by VECANN_SIMD.
func ParseISA(s string) (ISA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range isaNames {
		if name == s {
			return ISA(i), true
		}
	}
	return Generic, false
}

// envOverride names the environment variable that forces an ISA.
const envOverride = "VECANN_SIMD"

// Features lists the CPU capabilities that matter for kernel selection.
type Features struct {
	AVX2   bool // AVX2 together with FMA
	AVX512 bool // AVX-512 F and BW
	ASIMD  bool
	SVE2   bool
}

// Supports reports whether kernels for isa can run on these features.
func (f Features) Supports(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return f.ASIMD
	case SVE2:
		return f.SVE2
	case AVX2:
		return f.AVX2
	case AVX512:
		return f.AVX512
	default:
		return false
	}
}

// best returns the widest supported ISA.
func (f Features) best() ISA {
	for _, isa := range []ISA{AVX512, AVX2, SVE2, NEON} {
		if f.Supports(isa) {
			return isa
		}
	}
	return Generic
}

// selectISA honors override when it names a supported ISA and falls back
// to the widest one otherwise. The flag reports a recognized override.
func selectISA(f Features, override string) (ISA, bool) {
	if override == "" {
		return f.best(), false
	}
	isa, ok := ParseISA(override)
	if !ok {
		return f.best(), false
	}
	if !f.Supports(isa) {
		return f.best(), true
	}
	return isa, true
}

// Written once by the platform init.
var (
	cpuFeatures Features
	activeISA   ISA
	overridden  bool
)

func detect(f Features) {
	cpuFeatures = f
	activeISA, overridden = selectISA(f, os.Getenv(envOverride))
	installKernels(activeISA)
}

// ActiveISA returns the ISA whose kernels are installed.
func ActiveISA() ISA { return activeISA }

// IsOverridden reports whether VECANN_SIMD named a known ISA.
func IsOverridden() bool { return overridden }

// CPUFeatures returns the detected capabilities.
func CPUFeatures() Features { return cpuFeatures }
