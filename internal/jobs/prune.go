package jobs

import (
	"time"

	"go.uber.org/zap"
)

type Pruner interface {
	Prune(idle time.Duration) int
}

// LimiterPrune evicts rate limiters for clients idle longer than Idle.
type LimiterPrune struct {
	pruner Pruner
	idle   time.Duration
	logger *zap.Logger
}

func NewLimiterPrune(p Pruner, idle time.Duration, logger *zap.Logger) *LimiterPrune {
	return &LimiterPrune{pruner: p, idle: idle, logger: logger}
}

func (j *LimiterPrune) Run() {
	if n := j.pruner.Prune(j.idle); n > 0 {
		j.logger.Debug("idle rate limiters evicted", zap.Int("count", n))
	}
}
