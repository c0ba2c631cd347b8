// Package poller runs the dashboard's background refresh jobs: the
// activity summary poll and host vitals sampling.
package poller

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"luciadash/internal/cache"
	"luciadash/internal/database"
	"luciadash/internal/logging"
	"luciadash/internal/lucia"
	"luciadash/internal/system"
)

// Cache keys the poller fills; handlers read the same keys.
const (
	CacheKeySummary    = "summary"
	CacheKeyAgentStats = "agentStats"
)

// vitalsRetention bounds how much history the sqlite log keeps.
const vitalsRetention = 24 * time.Hour

// Broadcaster pushes refreshed data to connected dashboard clients.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// Poller schedules the periodic jobs. Jobs skip their run when the
// previous one is still going, so a slow backend cannot pile them up.
type Poller struct {
	cron        *cron.Cron
	client      *lucia.Client
	series      *system.Series
	summaries   *cache.Cache[*lucia.Summary]
	agentStats  *cache.Cache[[]lucia.AgentStat]
	broadcaster Broadcaster
}

// New creates a poller. broadcaster may be nil when nothing listens.
func New(client *lucia.Client, series *system.Series, summaries *cache.Cache[*lucia.Summary], agentStats *cache.Cache[[]lucia.AgentStat], broadcaster Broadcaster) *Poller {
	return &Poller{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cronLogger{}),
			cron.Recover(cronLogger{}),
		)),
		client:      client,
		series:      series,
		summaries:   summaries,
		agentStats:  agentStats,
		broadcaster: broadcaster,
	}
}

// Start registers the jobs and begins the schedule. The summary and
// vitals jobs run once right away so the first page load is warm.
func (p *Poller) Start() error {
	if _, err := p.cron.AddFunc("@every 30s", p.refreshSummary); err != nil {
		return err
	}
	if _, err := p.cron.AddFunc("@every 30s", p.sampleVitals); err != nil {
		return err
	}
	if _, err := p.cron.AddFunc("@hourly", p.cleanupVitals); err != nil {
		return err
	}

	p.cron.Start()

	go p.refreshSummary()
	go p.sampleVitals()

	logging.Printf("Background poller started")
	return nil
}

// Stop halts the schedule and waits for running jobs to finish, so no
// stale broadcast fires after teardown.
func (p *Poller) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	logging.Printf("Background poller stopped")
}

func (p *Poller) refreshSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	summary, err := p.client.GetActivitySummary(ctx)
	if err != nil {
		logging.Errorf("Summary refresh failed: %v", err)
		return
	}
	p.summaries.Set(CacheKeySummary, summary)

	stats, err := p.client.GetAgentStats(ctx)
	if err != nil {
		logging.Debug("Agent stats refresh failed: %v", err)
	} else {
		p.agentStats.Set(CacheKeyAgentStats, stats)
	}

	if p.broadcaster != nil {
		p.broadcaster.Broadcast("summary", summary)
	}
}

func (p *Poller) sampleVitals() {
	vitals, err := system.GetVitals()
	if err != nil {
		logging.Errorf("Vitals sampling failed: %v", err)
		return
	}

	p.series.Add(*vitals)

	if err := database.StoreSystemVital(vitals.CPUPercent, vitals.MemPercent, vitals.DiskPercent); err != nil {
		logging.Errorf("Failed to store vitals: %v", err)
	}
}

func (p *Poller) cleanupVitals() {
	if err := database.CleanupOldVitals(vitalsRetention); err != nil {
		logging.Errorf("Vitals cleanup failed: %v", err)
	}
}

// cronLogger routes cron's messages into the application log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug("cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Errorf("cron: %s: %v %v", msg, err, keysAndValues)
}
