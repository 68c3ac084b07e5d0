package enums

// PreservationMode is the coarse shelf-life classifier used when a category
// has no table entry. Unrecognized values are treated as immediate.
type PreservationMode string

const (
	PreservationModeImmediate PreservationMode = "immediate"
	PreservationModeAging     PreservationMode = "aging"
)

// IsValid reports whether the value matches the canonical preservation mode enum.
func (p PreservationMode) IsValid() bool {
	return p == PreservationModeImmediate || p == PreservationModeAging
}
