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
	// CandidatesInFlight is the number of pairing candidates currently
	// being matched against an invite.
	CandidatesInFlight = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "candidates_in_flight",
			Help:      "Number of pairing candidates currently being admitted",
		},
	)

	// CandidatesDropped counts candidates dropped for a missing or
	// expired invite, by reason.
	CandidatesDropped = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "candidates_dropped_total",
			Help:      "Total number of pairing candidates dropped",
		},
		[]string{"reason"},
	)

	// HandshakeDuration tracks the time from candidate announce to confirm.
	HandshakeDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "handshake_duration_seconds",
			Help:      "Pairing handshake duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
