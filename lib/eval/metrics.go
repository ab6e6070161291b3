/*
 * Warden
 * Copyright (C) 2025  The Warden Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package eval

import (
	"sync"
	"time"

	"github.com/gravitational/trace"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/lib/utils"
)

// evalMetrics is shared by all evaluators in the process. The collectors
// are registered once; handing every evaluator the same instances keeps
// their increments visible regardless of construction order.
type evalMetrics struct {
	evaluations       *prometheus.CounterVec
	errors            *prometheus.CounterVec
	duration          prometheus.Histogram
	regexCompilations prometheus.Counter
}

var (
	metricsOnce   sync.Once
	sharedMetrics *evalMetrics
	metricsErr    error
)

func getMetrics() (*evalMetrics, error) {
	metricsOnce.Do(func() {
		sharedMetrics, metricsErr = newEvalMetrics()
	})
	if metricsErr != nil {
		return nil, trace.Wrap(metricsErr)
	}
	return sharedMetrics, nil
}

func newEvalMetrics() (*evalMetrics, error) {
	m := &evalMetrics{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: warden.MetricEvaluations,
				Help: "Number of condition evaluations by outcome",
			},
			[]string{warden.TagResult},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: warden.MetricEvalErrors,
				Help: "Number of failed condition evaluations by error kind",
			},
			[]string{warden.TagKind},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    warden.MetricEvalDuration,
				Help:    "Condition evaluation latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
			},
		),
		regexCompilations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: warden.MetricRegexCompilations,
				Help: "Number of regex patterns compiled during evaluation",
			},
		),
	}
	err := utils.RegisterPrometheusCollectors(
		m.evaluations,
		m.errors,
		m.duration,
		m.regexCompilations,
	)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return m, nil
}

func (m *evalMetrics) observe(start time.Time, result bool, err error) {
	m.duration.Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		m.evaluations.WithLabelValues("error").Inc()
		m.errors.WithLabelValues(errorKind(err)).Inc()
	case result:
		m.evaluations.WithLabelValues("match").Inc()
	default:
		m.evaluations.WithLabelValues("no_match").Inc()
	}
}

func errorKind(err error) string {
	switch {
	case trace.IsNotFound(err):
		return "not_found"
	case trace.IsBadParameter(err):
		return "bad_parameter"
	case trace.IsNotImplemented(err):
		return "not_implemented"
	default:
		return "other"
	}
}
