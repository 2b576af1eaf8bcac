package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultUnpaidOrderTTL is how long an online order may wait for its payment.
	DefaultUnpaidOrderTTL = 24 * time.Hour

	// DefaultExpireSchedule runs the sweep every five minutes.
	DefaultExpireSchedule = "0 */5 * * * *"

	expireBatchSize = 100
)

type unpaidOrderLister interface {
	Handle(ctx context.Context, query queries.ListUnpaidOrdersQuery) ([]kernel.UUID, error)
}

type unpaidOrderExpirer interface {
	Handle(ctx context.Context, cmd commands.ExpireUnpaidOrderCommand) (commands.TransitionResult, error)
}

// ExpireUnpaidOrdersJob cancels online orders whose payment never completed
// within the TTL.
type ExpireUnpaidOrdersJob struct {
	lister   unpaidOrderLister
	expirer  unpaidOrderExpirer
	ttl      time.Duration
	schedule string
	now      func() time.Time
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewExpireUnpaidOrdersJob(
	lister unpaidOrderLister,
	expirer unpaidOrderExpirer,
	ttl time.Duration,
	schedule string,
	logger *slog.Logger,
) *ExpireUnpaidOrdersJob {
	if ttl <= 0 {
		ttl = DefaultUnpaidOrderTTL
	}
	if schedule == "" {
		schedule = DefaultExpireSchedule
	}
	return &ExpireUnpaidOrdersJob{
		lister:   lister,
		expirer:  expirer,
		ttl:      ttl,
		schedule: schedule,
		now:      time.Now,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "expire_unpaid_orders_job"),
	}
}

// Start schedules the sweep. Overlapping runs are skipped.
func (j *ExpireUnpaidOrdersJob) Start() error {
	_, err := j.cron.AddJob(j.schedule, cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).
		Then(cron.FuncJob(func() {
			if _, err := j.RunOnce(context.Background()); err != nil {
				j.logger.Error("Unpaid order sweep failed", "error", err)
			}
		})))
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Expire unpaid orders job started", "schedule", j.schedule, "ttl", j.ttl)
	return nil
}

// Stop waits for a running sweep to finish.
func (j *ExpireUnpaidOrdersJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Expire unpaid orders job stopped")
}

// RunOnce cancels every order older than the TTL that is still unpaid and
// returns how many were cancelled. A failure on one order does not stop the
// sweep; the order is picked up again on the next run.
func (j *ExpireUnpaidOrdersJob) RunOnce(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.ttl)
	query, err := queries.NewListUnpaidOrdersQuery(cutoff, expireBatchSize)
	if err != nil {
		return 0, err
	}
	ids, err := j.lister.Handle(ctx, query)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		cmd, err := commands.NewExpireUnpaidOrderCommand(id, cutoff)
		if err != nil {
			return expired, err
		}
		res, err := j.expirer.Handle(ctx, cmd)
		switch {
		case errors.Is(err, errs.ErrVersionIsInvalid):
			j.logger.InfoContext(ctx, "Order changed during sweep", "order_id", id.String())
		case err != nil:
			j.logger.ErrorContext(ctx, "Failed to expire unpaid order", "order_id", id.String(), "error", err)
		case res.Changed:
			expired++
			j.logger.InfoContext(ctx, "Unpaid order cancelled", "order_id", id.String())
		}
	}
	return expired, nil
}
