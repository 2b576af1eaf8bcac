// Package jobs provides scheduled background tasks for the fulfillment service.
//
// Jobs run on github.com/robfig/cron/v3 with second-resolution schedules and
// are started and stopped together through JobManager:
//
//	manager := jobs.NewJobManager(
//		jobs.NewExpireUnpaidOrdersJob(listUnpaid, expireUnpaid, ttl, "", logger),
//	)
//	if err := manager.StartAll(); err != nil {
//		log.Fatal(err)
//	}
//	defer manager.StopAll()
//
// # Available Jobs
//
// ExpireUnpaidOrdersJob cancels pending online orders whose payment did not
// complete within UNPAID_ORDER_TTL (24h by default). Each order is re-checked
// inside its own transaction, so a payment confirmed between the listing and
// the cancel wins.
package jobs
