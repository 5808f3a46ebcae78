package game

import "time"

// These must agree with the process. Lobby snapshots that publish their own
// values override them, see Machine.Rules.
const (
	DefaultRoundLimit    = 6
	DefaultRoundDuration = 20 * time.Second
	MinPlayers           = 2
)

type Rules struct {
	RoundLimit    int
	RoundDuration time.Duration
}

func DefaultRules() Rules {
	return Rules{RoundLimit: DefaultRoundLimit, RoundDuration: DefaultRoundDuration}
}

func (r Rules) normalized() Rules {
	if r.RoundLimit <= 0 {
		r.RoundLimit = DefaultRoundLimit
	}
	if r.RoundDuration <= 0 {
		r.RoundDuration = DefaultRoundDuration
	}
	return r
}

// EpochTime converts a process timestamp to time.Time. Values above 1e12 are
// milliseconds, anything else is seconds.
func EpochTime(v int64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	if v > 1e12 {
		return time.UnixMilli(v)
	}
	return time.Unix(v, 0)
}
