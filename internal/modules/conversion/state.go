package conversion

import "salescrm/internal/domain"

// State is the conversion state of a lead. The only transition is
// Unconverted to Converted.
type State string

const (
	Unconverted State = "unconverted"
	Converted   State = "converted"
)

func StateOf(l *domain.Lead) State {
	if l.Converted {
		return Converted
	}
	return Unconverted
}

// Convert returns the state after a conversion, or ErrAlreadyConverted.
func (s State) Convert() (State, error) {
	if s == Converted {
		return s, ErrAlreadyConverted
	}
	return Converted, nil
}
