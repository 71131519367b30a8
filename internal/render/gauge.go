package render

import (
	"sync"
	"time"
)

// Gauge tweens a displayed value toward a target over a fixed duration
// using timed increments, like an animated dial settling on a score.
// Set may be called at any time; the animation simply retargets.
type Gauge struct {
	mu        sync.Mutex
	displayed float64
	target    float64
	steps     int
	interval  time.Duration
	ticker    *time.Ticker
	stop      chan struct{}
	stopped   bool
}

// NewGauge creates a gauge that animates over the given duration in the
// given number of increments.
func NewGauge(duration time.Duration, steps int) *Gauge {
	if steps <= 0 {
		steps = 20
	}
	g := &Gauge{
		steps:    steps,
		interval: duration / time.Duration(steps),
		stop:     make(chan struct{}),
	}
	g.ticker = time.NewTicker(g.interval)
	go g.run()
	return g
}

// Set retargets the animation.
func (g *Gauge) Set(target float64) {
	g.mu.Lock()
	g.target = target
	g.mu.Unlock()
}

// Value returns the currently displayed (possibly mid-tween) value.
func (g *Gauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.displayed
}

// Stop halts the animation. The displayed value freezes where it is.
func (g *Gauge) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	g.stopped = true
	close(g.stop)
	g.ticker.Stop()
}

func (g *Gauge) run() {
	for {
		select {
		case <-g.stop:
			return
		case <-g.ticker.C:
			g.step()
		}
	}
}

// step moves the displayed value one increment toward the target.
func (g *Gauge) step() {
	g.mu.Lock()
	defer g.mu.Unlock()
	diff := g.target - g.displayed
	if diff == 0 {
		return
	}
	inc := g.target / float64(g.steps)
	if inc < 0 {
		inc = -inc
	}
	if inc == 0 || inc > absFloat(diff) {
		g.displayed = g.target
		return
	}
	if diff > 0 {
		g.displayed += inc
	} else {
		g.displayed -= inc
	}
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
