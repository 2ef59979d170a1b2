package ratelimit

import (
	"sync"
	"time"
)

// Limiter ограничивает частоту алертов по одной паре.
type Limiter interface {
	Allow(pair string) bool
}

type PairLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

func NewPairLimiter(cooldown time.Duration) *PairLimiter {
	return &PairLimiter{
		cooldown: cooldown,
		last:     map[string]time.Time{},
		now:      time.Now,
	}
}

// Allow возвращает true и фиксирует отметку времени, если после прошлого
// алерта по паре прошло не меньше cooldown. Отказ отметку не обновляет.
func (l *PairLimiter) Allow(pair string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if prev, ok := l.last[pair]; ok && now.Sub(prev) < l.cooldown {
		return false
	}
	l.last[pair] = now
	return true
}
