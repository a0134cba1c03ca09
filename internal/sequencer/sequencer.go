package sequencer

import (
	"context"
	"fmt"
	"time"
)

const prefix = "ORD"

// Counter hands out strictly increasing values per key. Implementations must
// be atomic across processes.
type Counter interface {
	Next(ctx context.Context, key string) (int64, error)
}

// Sequencer issues human-readable order numbers of the form
// ORD<YYMMDD><seq>, where seq restarts at 001 each day and widens past 999.
type Sequencer struct {
	counter Counter
	now     func() time.Time
}

func New(counter Counter) *Sequencer {
	return &Sequencer{counter: counter, now: time.Now}
}

// DateKey formats t as YYMMDD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("060102")
}

func Format(dateKey string, seq int64) string {
	return fmt.Sprintf("%s%s%03d", prefix, dateKey, seq)
}

// NextNumber reserves the next number for dateKey.
func (s *Sequencer) NextNumber(ctx context.Context, dateKey string) (string, error) {
	seq, err := s.counter.Next(ctx, "order:"+dateKey)
	if err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return Format(dateKey, seq), nil
}

// Next reserves the next number for the current day.
func (s *Sequencer) Next(ctx context.Context) (string, error) {
	return s.NextNumber(ctx, DateKey(s.now()))
}
