// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are cron-based (github.com/robfig/cron/v3) and read-only: none of them
// takes part in claiming, which is decided entirely by the store's
// compare-and-swap.
//
// # Available Jobs
//
// 1. PendingBacklogJob - counts pending orders and publishes the number as the
// dispatch_pending_orders gauge
//
// # Usage
//
//	jobManager, err := jobs.NewJobManager(countHandler, sink, jobs.Settings{}, logger)
//	if err != nil {
//		return err
//	}
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules use the six-field cron format with seconds. The backlog job
// defaults to DefaultBacklogSchedule. A run that is still in progress when the
// next tick arrives causes that tick to be skipped.
package jobs
