// Package health provides liveness and readiness probes for the admin
// server.
//
// Liveness only reports that the process is up. Readiness runs every
// registered check concurrently, each bounded by the checker's timeout:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("database", health.PingCheck(store))
//	checker.RegisterCheck("scheduler", health.RunningCheck(sched.IsRunning))
//	mux.Handle("/ready", checker.ReadinessHandler())
package health
