package requirement

// PinLevel classifies how strictly a requirement constrains its version.
type PinLevel int

const (
	// Unpinned has no version specifier at all.
	Unpinned PinLevel = iota
	// Loose has a non-empty specifier that does not pin an exact version.
	Loose
	// Strict pins an exact version with a single equality clause.
	Strict
)

func (p PinLevel) String() string {
	switch p {
	case Unpinned:
		return "unpinned"
	case Loose:
		return "loose"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

// Classify returns the pin level of a requirement. A specifier set with a
// single equality clause counts as Strict even when combined with exclusion
// clauses (e.g. "==1.2,!=1.2.1"): the primary pin is still exact.
func Classify(r Requirement) PinLevel {
	if len(r.Specs) == 0 {
		return Unpinned
	}
	if _, ok := r.PinnedVersion(); ok {
		return Strict
	}
	return Loose
}
