// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActionsAppended tracks local optimistic appends by action type.
	ActionsAppended = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "actions_appended_total",
			Help:      "Total number of actions appended to the local log",
		},
		[]string{"type"},
	)

	// ActionsApplied tracks entries the apply loop dispatched to the view.
	ActionsApplied = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "actions_applied_total",
			Help:      "Total number of entries applied to the view",
		},
		[]string{"type"},
	)

	// ActionsRejected tracks entries skipped by the validator, by reason.
	ActionsRejected = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "actions_rejected_total",
			Help:      "Total number of entries skipped by the validator",
		},
		[]string{"type", "reason"},
	)

	// BatchDuration tracks apply-batch wall time.
	BatchDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "batch_duration_seconds",
			Help:      "Apply-batch processing duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		},
	)
)
