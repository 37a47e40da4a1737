// Package metrics exposes snapshot service instrumentation in Prometheus
// format.
package metrics

import (
	"net/http"

	gometrics "github.com/docker/go-metrics"
)

var (
	SnapshotDuration    gometrics.Timer
	Processes           gometrics.Gauge
	Roots               gometrics.Gauge
	DuplicatesDropped   gometrics.Counter
	CyclesBroken        gometrics.Counter
	EnumerationFailures gometrics.Counter
	Requests            gometrics.LabeledCounter
)

func init() {
	ns := gometrics.NewNamespace("proctree", "snapshot", nil)
	SnapshotDuration = ns.NewTimer("duration", "The number of seconds it takes to enumerate, build and serialize one snapshot")
	Processes = ns.NewGauge("processes", "The number of processes in the most recent snapshot", gometrics.Unit("processes"))
	Roots = ns.NewGauge("roots", "The number of root processes in the most recent snapshot", gometrics.Unit("processes"))
	DuplicatesDropped = ns.NewCounter("duplicates_dropped", "The number of records dropped because their pid was already listed")
	CyclesBroken = ns.NewCounter("cycles_broken", "The number of records promoted to root to break a parent cycle")
	EnumerationFailures = ns.NewCounter("enumeration_failures", "The number of snapshots that failed because the process table could not be listed")
	Requests = ns.NewLabeledCounter("requests", "The number of get_processes requests by outcome", "outcome")
	gometrics.Register(ns)
}

// Handler serves every registered collector.
func Handler() http.Handler {
	return gometrics.Handler()
}
