package control

import "github.com/bft-labs/trafficd/internal/domain"

// Next returns the phase that follows cur.
//
// pedestrianWaiting is evaluated when cur is about to be left, so a request
// made during NS_GREEN is served after the following ALL_RED. lastGreen and
// alternate only matter when the east-west extension is enabled: ALL_RED then
// serves the street that did not get the previous green.
func Next(cur domain.Phase, pedestrianWaiting bool, lastGreen domain.Phase, alternate bool) domain.Phase {
	switch cur {
	case domain.PhaseInit:
		return domain.PhaseAllRed
	case domain.PhaseAllRed:
		if pedestrianWaiting {
			return domain.PhasePedCross
		}
		if alternate && lastGreen == domain.PhaseNSGreen {
			return domain.PhaseEWGreen
		}
		return domain.PhaseNSGreen
	case domain.PhaseNSGreen:
		return domain.PhaseNSYellow
	case domain.PhaseNSYellow:
		return domain.PhaseAllRed
	case domain.PhaseEWGreen:
		return domain.PhaseEWYellow
	case domain.PhaseEWYellow:
		return domain.PhaseAllRed
	case domain.PhasePedCross:
		return domain.PhaseAllRed
	case domain.PhaseEmergency:
		return domain.PhaseEmergency
	default:
		return domain.PhaseAllRed
	}
}
