package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/merra-climatology/internal/climate"
)

// Prober is the part of climate.Service the scheduler drives.
type Prober interface {
	Probe(ctx context.Context) climate.ProbeResult
}

// Scheduler periodically probes the remote archive for availability.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, prober Prober) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		prober:    prober,
		interval:  interval,
	}
}

// Start schedules the probe job and starts the underlying scheduler.
// A non-positive interval disables probing.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: probe interval not set; archive probing disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r := s.prober.Probe(ctx)
	if r.Available {
		log.Printf("scheduler: archive probe ok in %s (%s)", r.Latency.Round(time.Millisecond), r.Location)
		return
	}
	log.Printf("scheduler: archive probe failed for %s: %s", r.Location, r.Error)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
