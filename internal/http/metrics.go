package http

import (
	"sync/atomic"
	"time"
)

type appMetrics struct {
	started             time.Time
	transactionsCreated int64
	transactionsDeleted int64
	assistantQueries    int64
	cacheHits           int64
	cacheMisses         int64
}

func newAppMetrics() *appMetrics {
	return &appMetrics{started: time.Now()}
}

func (m *appMetrics) created() { atomic.AddInt64(&m.transactionsCreated, 1) }
func (m *appMetrics) deleted() { atomic.AddInt64(&m.transactionsDeleted, 1) }
func (m *appMetrics) asked() { atomic.AddInt64(&m.assistantQueries, 1) }
func (m *appMetrics) cacheHit() { atomic.AddInt64(&m.cacheHits, 1) }
func (m *appMetrics) cacheMiss() { atomic.AddInt64(&m.cacheMisses, 1) }
func (m *appMetrics) uptime() time.Duration { return time.Since(m.started) }
