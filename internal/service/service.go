// Package service implements the get_processes operation: one fresh
// enumeration, tree build and serialization per call.
package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Dicklesworthstone/proctree/internal/metrics"
	"github.com/Dicklesworthstone/proctree/internal/reader"
	"github.com/Dicklesworthstone/proctree/internal/tree"
	"github.com/Dicklesworthstone/proctree/internal/wire"
)

// Service holds no state between calls; concurrent calls are independent.
type Service struct {
	reader reader.Reader
	log    *logrus.Entry
}

// Option configures a Service.
type Option func(*Service)

// WithLogger replaces the default logger.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Service) { s.log = l }
}

func New(r reader.Reader, opts ...Option) *Service {
	s := &Service{
		reader: r,
		log:    logrus.WithField("source", "service"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetSnapshot reads the process table and returns it as a document. The only
// error it returns is the reader's EnumerationError.
func (s *Service) GetSnapshot(ctx context.Context) (wire.Document, error) {
	start := time.Now()

	records, err := s.reader.ReadAll(ctx)
	if err != nil {
		metrics.EnumerationFailures.Inc()
		s.log.WithError(err).Warn("snapshot failed")
		if !reader.IsEnumerationError(err) {
			err = &reader.EnumerationError{Op: "read", Err: err}
		}
		return wire.Document{}, err
	}

	snap := tree.Build(records)
	doc := wire.Serialize(snap)

	metrics.SnapshotDuration.UpdateSince(start)
	metrics.Processes.Set(float64(snap.Stats.Processes))
	metrics.Roots.Set(float64(len(snap.Roots)))
	if snap.Stats.Duplicates > 0 {
		metrics.DuplicatesDropped.Inc(float64(snap.Stats.Duplicates))
	}
	if snap.Stats.Promoted > 0 {
		metrics.CyclesBroken.Inc(float64(snap.Stats.Promoted))
	}
	s.log.WithFields(logrus.Fields{
		"processes": snap.Stats.Processes,
		"roots":     len(snap.Roots),
		"elapsed":   time.Since(start),
	}).Debug("snapshot built")

	return doc, nil
}

// GetProcesses is GetSnapshot rendered as the JSON text clients consume.
func (s *Service) GetProcesses(ctx context.Context) ([]byte, error) {
	doc, err := s.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	b, err := wire.Marshal(doc, wire.FormatJSON, false)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return b, nil
}
