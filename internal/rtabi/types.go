// Package rtabi defines the ABI constants shared between the type layer and
// the BPF code generator. These values must be kept in sync with the
// generator's map value encoding.
package rtabi

// Scalar sizes in bytes
const (
	SizeBool = 1 // u8
	SizePtr  = 8 // 64-bit kernel/user address
)

// Scalar alignments in bytes
const (
	AlignBool = 1
	AlignPtr  = 8
	AlignMax  = 8 // largest natural alignment on the target
)

// Aggregate map value slots. Each aggregate occupies one per-CPU value in the
// generated map; avg and stats keep a (total, count) pair.
const (
	SizeCountSlot = 8
	SizeSumSlot   = 8
	SizeMinSlot   = 8
	SizeMaxSlot   = 8
	SizeAvgSlot   = 16
	SizeStatsSlot = 16
	SizeHistSlot  = 8 // per-bucket counter; the bucket index lives in the key
)

// Limits
const (
	// MaxStringSize is the largest string the generator will place on the
	// BPF stack.
	MaxStringSize = 1024

	// DefaultStringSize is the size of strings produced by str() without an
	// explicit length.
	DefaultStringSize = 64

	// CommSize matches TASK_COMM_LEN.
	CommSize = 16
)
