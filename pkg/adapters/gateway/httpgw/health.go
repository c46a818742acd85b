package httpgw

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// probeTimeout bounds a single health probe
const probeTimeout = 5 * time.Second

// Prober periodically checks backend reachability so the service health
// endpoint can report gateway status without issuing a probe per request
type Prober struct {
	client   *Client
	interval time.Duration
	logger   *zap.Logger

	mu        sync.RWMutex
	running   bool
	healthy   bool
	lastError string
	checkedAt time.Time
	stopCh    chan struct{}
}

// HealthStatus is the prober's view of the backend
type HealthStatus struct {
	Healthy   bool      `json:"healthy"`
	LastError string    `json:"last_error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// NewProber creates a new gateway health prober
func NewProber(client *Client, interval time.Duration, logger *zap.Logger) *Prober {
	return &Prober{
		client:   client,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start starts the prober
func (p *Prober) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.check()
	go p.run()
}

// Stop stops the prober
func (p *Prober) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
}

// run is the main probe loop
func (p *Prober) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.check()
		}
	}
}

// check probes the backend once and records the result
func (p *Prober) check() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	err := p.client.Ping(ctx)

	p.mu.Lock()
	p.checkedAt = time.Now()
	p.healthy = err == nil
	if err != nil {
		p.lastError = err.Error()
	} else {
		p.lastError = ""
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("backend gateway unreachable", zap.Error(err))
	}
}

// Status returns the last probe result
func (p *Prober) Status() HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return HealthStatus{
		Healthy:   p.healthy,
		LastError: p.lastError,
		CheckedAt: p.checkedAt,
	}
}

// IsHealthy returns true if the last probe succeeded
func (p *Prober) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy
}
