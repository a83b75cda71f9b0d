package api

import (
	"sync"

	"github.com/fpang/campaign-intel/internal/pipeline"
)

// recentReports is how many finished runs are kept for opening sessions by ID.
const recentReports = 20

// reportCache keeps the most recent reports, evicting the oldest insert.
type reportCache struct {
	mu    sync.Mutex
	limit int
	order []string
	byID  map[string]*pipeline.Report
}

func newReportCache(limit int) *reportCache {
	return &reportCache{limit: limit, byID: make(map[string]*pipeline.Report)}
}

func (c *reportCache) add(r *pipeline.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[r.ID]; !ok {
		c.order = append(c.order, r.ID)
	}
	c.byID[r.ID] = r
	for len(c.order) > c.limit {
		delete(c.byID, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *reportCache) get(id string) (*pipeline.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.byID[id]
	return r, ok
}
