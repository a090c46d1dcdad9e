package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Completer moves ended bookings to completed and reports how many changed.
type Completer interface {
	CompleteFinished(ctx context.Context) (int, error)
}

// CompletionJob periodically completes bookings whose stay has ended.
type CompletionJob struct {
	completer Completer
	interval  time.Duration
	log       *logrus.Entry
}

func NewCompletionJob(completer Completer, interval time.Duration, log *logrus.Entry) *CompletionJob {
	return &CompletionJob{
		completer: completer,
		interval:  interval,
		log:       log.WithField("component", "completion_job"),
	}
}

// Run sweeps once immediately, then on every tick, until ctx is cancelled.
func (j *CompletionJob) Run(ctx context.Context) {
	j.log.WithField("interval", j.interval.String()).Info("completion job started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.sweep(ctx)

		select {
		case <-ctx.Done():
			j.log.Info("completion job stopped")
			return
		case <-ticker.C:
		}
	}
}

func (j *CompletionJob) sweep(ctx context.Context) {
	n, err := j.completer.CompleteFinished(ctx)
	if err != nil {
		if ctx.Err() == nil {
			j.log.WithError(err).Error("failed to complete bookings")
		}
		return
	}
	if n > 0 {
		j.log.WithField("count", n).Info("bookings completed")
	}
}
