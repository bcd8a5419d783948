package timekey

import (
	"sync"
	"time"
)

// Generator 生成单调递增的时间序 key（纳秒时间戳，冲突时 +1）
type Generator struct {
	mu   sync.Mutex
	last int64
}

// Next returns a strictly increasing int64. Values from one generator are
// globally comparable across users, so a user's ledger sorts by recency
// without a secondary sort key.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now().UnixNano()
	if now <= g.last {
		now = g.last + 1
	}
	g.last = now
	return now
}

// At returns a key for an explicit timestamp, still strictly increasing
// with respect to previously issued keys.
func (g *Generator) At(t time.Time) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := t.UnixNano()
	if v <= g.last {
		v = g.last + 1
	}
	g.last = v
	return v
}

var def Generator

// Next 取默认生成器的下一个 key
func Next() int64 { return def.Next() }
