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
	// InvitesCreated counts create-invite actions applied to the view,
	// from any writer.
	InvitesCreated = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invite",
			Name:      "created_total",
			Help:      "Total number of invites created",
		},
	)

	// InvitesClaimed counts successful claim-invite admissions.
	InvitesClaimed = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invite",
			Name:      "claimed_total",
			Help:      "Total number of invites successfully claimed",
		},
	)

	// InvitesRevoked counts revoke-invite actions applied.
	InvitesRevoked = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invite",
			Name:      "revoked_total",
			Help:      "Total number of invites revoked",
		},
	)

	// InvitesExpired counts claim attempts rejected for expiry.
	InvitesExpired = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invite",
			Name:      "expired_total",
			Help:      "Total number of claim attempts rejected as expired",
		},
	)

	// ActiveInvites is a point-in-time gauge of applied invites not yet
	// revoked; claims and expiry do not lower it.
	ActiveInvites = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "invite",
			Name:      "active",
			Help:      "Number of applied invites not yet revoked",
		},
	)
)
