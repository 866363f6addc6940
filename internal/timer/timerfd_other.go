//go:build !linux

package timer

import (
	"fmt"
	"runtime"

	"github.com/bft-labs/trafficd/internal/domain"
)

const osTimerSupported = false

func newOSTimer() (PhaseTimer, error) {
	return nil, fmt.Errorf("%w: os timer not supported on %s", domain.ErrTimerCreate, runtime.GOOS)
}
