package shroud

import (
	"context"
	"time"
)

type timeOffset struct {
	max time.Duration
}

// TimeOffset returns a reversible transform shifting timestamps by a
// session-derived offset of up to limit in either direction. Intervals
// between records of one session are preserved.
func TimeOffset(limit time.Duration) Reversible {
	return &timeOffset{max: limit}
}

func (t *timeOffset) Name() string { return NameTimeOffset }

func (t *timeOffset) offset(s *Session) (time.Duration, error) {
	u, err := s.Unit("time.offset")
	if err != nil {
		return 0, err
	}
	return time.Duration(u * float64(t.max)), nil
}

func (t *timeOffset) Apply(_ context.Context, s *Session, value any) (any, error) {
	return t.shift(s, value, 1)
}

func (t *timeOffset) Revert(_ context.Context, s *Session, value any) (any, error) {
	return t.shift(s, value, -1)
}

func (t *timeOffset) shift(s *Session, value any, sign time.Duration) (any, error) {
	ts, ok := value.(time.Time)
	if !ok {
		return nil, unsupported(NameTimeOffset, value)
	}
	d, err := t.offset(s)
	if err != nil {
		return nil, err
	}
	return ts.Add(sign * d), nil
}
