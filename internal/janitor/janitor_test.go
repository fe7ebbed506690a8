package janitor

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type target struct {
	pruned  []time.Duration
	trimmed []int
	err     error
}

func (t *target) PruneSearchCache(_ context.Context, d time.Duration) (int64, error) {
	t.pruned = append(t.pruned, d)
	return 2, t.err
}

func (t *target) TrimHistory(_ context.Context, keep int) (int64, error) {
	t.trimmed = append(t.trimmed, keep)
	return 1, t.err
}

func TestSweepAppliesPolicy(t *testing.T) {
	tg := &target{}
	Sweep(context.Background(), tg, Policy{CacheTTL: time.Hour, HistoryKeep: 50})
	assert.Equal(t, []time.Duration{time.Hour}, tg.pruned)
	assert.Equal(t, []int{50}, tg.trimmed)
}

func TestSweepZeroPolicyTouchesNothing(t *testing.T) {
	tg := &target{}
	Sweep(context.Background(), tg, Policy{})
	assert.Empty(t, tg.pruned)
	assert.Empty(t, tg.trimmed)
}

func TestSweepKeepsGoingAfterErrors(t *testing.T) {
	tg := &target{err: errors.New("locked")}
	Sweep(context.Background(), tg, Policy{CacheTTL: time.Minute, HistoryKeep: 1})
	assert.Len(t, tg.pruned, 1)
	assert.Len(t, tg.trimmed, 1)
}
