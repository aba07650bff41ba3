package farm

// Slot is one addressable cell of the grid, holding at most one crop.
type Slot struct {
	Crop     CropID `json:"crop,omitempty"`
	Growth   int    `json:"growth,omitempty"`
	DryDays  int    `json:"dry_days,omitempty"`
	Watered  bool   `json:"watered,omitempty"`
	Withered bool   `json:"withered,omitempty"`
	Mature   bool   `json:"mature,omitempty"`
	Unlocked bool   `json:"unlocked,omitempty"`
}

// Empty reports whether the slot holds no crop.
func (s Slot) Empty() bool {
	return s.Crop == ""
}

// Alive reports whether the slot is unlocked and holds a living crop.
func (s Slot) Alive() bool {
	return s.Unlocked && !s.Empty() && !s.Withered
}

// ChangeKind classifies a slot mutation.
type ChangeKind int

const (
	ChangeGrew ChangeKind = iota
	ChangeMatured
	ChangeDried
	ChangeWithered
)

// String returns the change name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeGrew:
		return "grew"
	case ChangeMatured:
		return "matured"
	case ChangeDried:
		return "dried"
	case ChangeWithered:
		return "withered"
	default:
		return "unknown"
	}
}

// Change records how a single slot moved during Grow.
type Change struct {
	Index int
	Kind  ChangeKind
	Slot  Slot
}
