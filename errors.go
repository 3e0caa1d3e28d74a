package cordial

import (
	"errors"
)

var (
	ErrInvalidCfg = errors.New("cordial: invalid options")

	ErrIDExhausted  = errors.New("idalloc: identifier range exhausted")
	ErrIDRangeEmpty = errors.New("idalloc: empty identifier range")
)

// Fatal assertion texts. These conditions are lifecycle defects, not
// recoverable errors: the rest of the system guarantees the coordinator
// outlives every client and that every live session is terminated before
// its client is discarded. Continuing past any of them would operate on a
// duplicated or lost session.
const (
	panicCoordinatorGone    = "cordial: coordinator unexpectedly gone"
	panicReplyDropped       = "cordial: coordinator unexpectedly canceled request"
	panicNoSessionBack      = "cordial: coordinator reply carried no session"
	panicUnterminated       = "cordial: unterminated SessionClient discarded"
	panicSessionInFlight    = "cordial: session unavailable: request in flight"
	panicUsedAfterTerminate = "cordial: SessionClient used after Terminate"
)
