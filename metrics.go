/*
 * Warden
 * Copyright (C) 2024  The Warden Authors
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

package warden

const (
	// MetricEvaluations counts finished condition evaluations by outcome.
	MetricEvaluations = "warden_eval_evaluations_total"

	// MetricEvalErrors counts evaluation errors by kind.
	MetricEvalErrors = "warden_eval_errors_total"

	// MetricEvalDuration measures wall time of a full tree walk.
	MetricEvalDuration = "warden_eval_duration_seconds"

	// MetricRegexCompilations counts regular expressions compiled at
	// evaluation time rather than carried precompiled by the tree.
	MetricRegexCompilations = "warden_eval_regex_compilations_total"

	// TagResult is the outcome label on MetricEvaluations.
	TagResult = "result"

	// TagKind is the error kind label on MetricEvalErrors.
	TagKind = "kind"
)
