package domain

// Phase is the signal phase currently displayed at the intersection.
// Exactly one phase is current at any instant.
type Phase int

const (
	// PhaseInit is shown once at startup and never re-entered.
	PhaseInit Phase = iota
	PhaseNSGreen
	PhaseNSYellow
	PhaseEWGreen
	PhaseEWYellow
	PhaseAllRed
	PhasePedCross
	PhaseEmergency
)

// String returns the canonical upper-case phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhaseNSGreen:
		return "NS_GREEN"
	case PhaseNSYellow:
		return "NS_YELLOW"
	case PhaseEWGreen:
		return "EW_GREEN"
	case PhaseEWYellow:
		return "EW_YELLOW"
	case PhaseAllRed:
		return "ALL_RED"
	case PhasePedCross:
		return "PED_CROSS"
	case PhaseEmergency:
		return "EMERGENCY"
	default:
		return "UNKNOWN"
	}
}

// Indication is the aspect shown by one signal head.
type Indication int

const (
	IndicationOff Indication = iota
	IndicationRed
	IndicationYellow
	IndicationGreen
	IndicationFlashingRed
)

// String returns a human-readable representation of the indication.
func (i Indication) String() string {
	switch i {
	case IndicationRed:
		return "RED"
	case IndicationYellow:
		return "YELLOW"
	case IndicationGreen:
		return "GREEN"
	case IndicationFlashingRed:
		return "FLASHING RED"
	default:
		return "OFF"
	}
}

// Signals describes what every signal head shows during a phase.
type Signals struct {
	NorthSouth Indication
	EastWest   Indication
	Walk       bool
}

// Signals returns the indications displayed while p is current.
func (p Phase) Signals() Signals {
	switch p {
	case PhaseNSGreen:
		return Signals{NorthSouth: IndicationGreen, EastWest: IndicationRed}
	case PhaseNSYellow:
		return Signals{NorthSouth: IndicationYellow, EastWest: IndicationRed}
	case PhaseEWGreen:
		return Signals{NorthSouth: IndicationRed, EastWest: IndicationGreen}
	case PhaseEWYellow:
		return Signals{NorthSouth: IndicationRed, EastWest: IndicationYellow}
	case PhaseAllRed:
		return Signals{NorthSouth: IndicationRed, EastWest: IndicationRed}
	case PhasePedCross:
		return Signals{NorthSouth: IndicationRed, EastWest: IndicationRed, Walk: true}
	case PhaseEmergency:
		return Signals{NorthSouth: IndicationFlashingRed, EastWest: IndicationFlashingRed}
	default:
		return Signals{}
	}
}

// Direction identifies the street a pedestrian wants to cross.
type Direction int

const (
	DirectionNS Direction = iota
	DirectionEW
)

// String returns a human-readable representation of the direction.
func (d Direction) String() string {
	if d == DirectionEW {
		return "east-west"
	}
	return "north-south"
}
