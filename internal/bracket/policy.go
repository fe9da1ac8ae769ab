package bracket

import "fmt"

// SizePolicy decides which participant counts Generate accepts.
type SizePolicy int

const (
	// SizeFloor pairs participants two by two and leaves a trailing odd participant unplaced.
	SizeFloor SizePolicy = iota
	// SizePowerOfTwo rejects counts that are not a power of two.
	SizePowerOfTwo
)

func (p SizePolicy) String() string {
	switch p {
	case SizeFloor:
		return "floor"
	case SizePowerOfTwo:
		return "power-of-two"
	}
	return fmt.Sprintf("SizePolicy(%d)", int(p))
}

func ParseSizePolicy(s string) (SizePolicy, error) {
	switch s {
	case "floor":
		return SizeFloor, nil
	case "power-of-two", "pow2":
		return SizePowerOfTwo, nil
	}
	return 0, fmt.Errorf("unknown bracket size policy %q", s)
}

// RevisionPolicy decides what happens when a decided match is given a different winner.
type RevisionPolicy int

const (
	RevisionForbid RevisionPolicy = iota
	// RevisionOverwrite replaces the downstream slot and leaves later rounds untouched.
	// A downstream match that was already decided keeps its WinnerID even when that
	// participant no longer occupies either of its slots.
	RevisionOverwrite
	// RevisionCascade replaces the downstream slot and clears every decided match the old winner reached.
	RevisionCascade
)

func (p RevisionPolicy) String() string {
	switch p {
	case RevisionForbid:
		return "forbid"
	case RevisionOverwrite:
		return "overwrite"
	case RevisionCascade:
		return "cascade"
	}
	return fmt.Sprintf("RevisionPolicy(%d)", int(p))
}

func ParseRevisionPolicy(s string) (RevisionPolicy, error) {
	switch s {
	case "forbid":
		return RevisionForbid, nil
	case "overwrite":
		return RevisionOverwrite, nil
	case "cascade":
		return RevisionCascade, nil
	}
	return 0, fmt.Errorf("unknown bracket revision policy %q", s)
}
