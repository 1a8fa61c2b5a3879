// Package operations runs the export plan.
//
// A Runner takes the selected jobs of the plan and runs them in order. Each
// job opens its own source session, runs the Step registered for its kind and
// closes the session, whatever the outcome. The first failing job stops the
// run and is returned as a *JobError carrying the job name, kind and library
// and unwrapping to the exporter or source error.
//
// Steps for the three job kinds are registered by NewDefaultRegistry:
//
//	registry := operations.NewDefaultRegistry(cfg.Export, metrics)
//	runner := operations.NewRunner(opener, registry,
//		operations.WithPaths(config.NewPaths(cfg.Export.BaseDir)),
//		operations.WithJobRecorder(metrics))
//	err := runner.Run(ctx, jobs)
package operations
