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

// Package instance is the lifecycle owner of spec §4.7: it wires the
// log, view, router, invite manager and pairing handshake together
// behind the public API a caller actually uses, and hands each
// component only the narrow borrow it needs back (append_action,
// view_read, current_signer) rather than a reciprocal reference to
// itself (spec §9's re-architecture note).
package instance

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qalbehabib/syncbase/codec"
	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/internal/logger"
	"github.com/qalbehabib/syncbase/internal/metrics"
	"github.com/qalbehabib/syncbase/invite"
	"github.com/qalbehabib/syncbase/logstream"
	"github.com/qalbehabib/syncbase/logstream/memlog"
	"github.com/qalbehabib/syncbase/pairing"
	"github.com/qalbehabib/syncbase/router"
	"github.com/qalbehabib/syncbase/syncerr"
	"github.com/qalbehabib/syncbase/view"
	"github.com/qalbehabib/syncbase/view/memory"
)

// defaultApplyInterval is how often Open's background loop drives the
// router (spec §4.5's apply loop; the Router itself only exposes
// RunOnce/Run, Instance is what decides the cadence in practice).
const defaultApplyInterval = 50 * time.Millisecond

// Instance is one local SyncBase process (spec Glossary): it owns the
// log, the materialized View, the single apply loop, and every
// component built on top of them.
type Instance struct {
	signer *crypto.KeyPair
	log    logstream.Log
	v      *view.View
	ps     view.Store
	router *router.Router
	invites *invite.Manager
	lg     logger.Logger

	emitter *emitter

	mu        sync.RWMutex
	lastFlush int64

	cancel context.CancelFunc
	done   chan struct{}

	// pairingGroup tracks the goroutines AcceptPairings spawns per
	// candidate, so Close can wait for in-flight admits to finish
	// before the log and view are closed out from under them.
	pairingGroup errgroup.Group
}

// Options configures Open. A zero-value Options is valid: it opens a
// fresh in-memory store and log, which is sufficient for tests and a
// single-process demo (spec §4.8's memlog/view-memory reference pair).
type Options struct {
	// Store backs the View's materialized rows. Defaults to view/memory.
	Store view.Store
	// ProcessedStore backs the router's persistent processed-set.
	// Defaults to a separate view/memory store.
	ProcessedStore view.Store
	// Log is the append-only multi-writer log this instance appends to
	// and replays from. Defaults to a fresh logstream/memlog.Log keyed
	// by the signer's public key.
	Log logstream.Log
	// Logger receives structured apply-loop and lifecycle diagnostics.
	// Defaults to logger.NewDefaultLogger().
	Logger logger.Logger
	// ApplyInterval overrides defaultApplyInterval.
	ApplyInterval time.Duration
}

// Open derives the instance's writer identity from phrase (spec §4.1
// "same phrase always yields the same keypair"), wires the component
// graph, and starts the background apply loop. Call Close to stop it.
func Open(phrase string, opts Options) (*Instance, error) {
	signer, err := crypto.DeriveKeyPair(phrase)
	if err != nil {
		return nil, syncerr.New(syncerr.KindMalformedAction, "instance.Open", err)
	}

	store := opts.Store
	if store == nil {
		store = memory.New()
	}
	processedStore := opts.ProcessedStore
	if processedStore == nil {
		processedStore = memory.New()
	}
	log := opts.Log
	if log == nil {
		log = memlog.New(logstream.WriterKey(signer.PublicKey()))
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.NewDefaultLogger()
	}
	interval := opts.ApplyInterval
	if interval <= 0 {
		interval = defaultApplyInterval
	}

	v := view.New(store)
	r := router.New(log, v, processedStore, lg)

	in := &Instance{
		signer:  signer,
		log:     log,
		v:       v,
		ps:      processedStore,
		router:  r,
		lg:      lg,
		emitter: newEmitter(),
		done:    make(chan struct{}),
	}
	in.invites = invite.NewManager(in)

	ctx, cancel := context.WithCancel(context.Background())
	in.cancel = cancel
	go in.runLoop(ctx, interval)

	return in, nil
}

// Close stops the apply loop and releases the log and view.
func (in *Instance) Close() error {
	in.cancel()
	<-in.done
	in.pairingGroup.Wait()
	if err := in.v.Close(); err != nil {
		return syncerr.New(syncerr.KindInternal, "instance.Close", err)
	}
	if err := in.log.Close(); err != nil {
		return syncerr.New(syncerr.KindInternal, "instance.Close", err)
	}
	return nil
}

func (in *Instance) runLoop(ctx context.Context, interval time.Duration) {
	defer close(in.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := in.router.RunOnce(ctx); err != nil {
				in.lg.Error("apply loop error", logger.Error(err))
				continue
			}
			in.mu.Lock()
			in.lastFlush = crypto.NowMillis()
			in.mu.Unlock()
			in.emitter.emit(Event{Type: EventViewChanged, At: crypto.NowMillis()})
		}
	}
}

// AppendAction implements invite.Host: it signs payload as actionType
// and appends it to the local writer's log stream, optimistically
// (spec §4.7 "Every write API ... appends optimistically").
func (in *Instance) AppendAction(ctx context.Context, actionType codec.ActionType, payload map[string]interface{}) error {
	env, err := crypto.CreateSignedAction(in.signer, actionType.TypeString(), payload)
	if err != nil {
		return syncerr.New(syncerr.KindInternal, "instance.AppendAction", err)
	}
	if err := in.log.Append(ctx, *env); err != nil {
		return syncerr.New(syncerr.KindTransport, "instance.AppendAction", err)
	}
	metrics.ActionsAppended.WithLabelValues(actionType.TypeString()).Inc()
	return nil
}

// View implements invite.Host.
func (in *Instance) View() *view.View { return in.v }

// CurrentSigner implements invite.Host.
func (in *Instance) CurrentSigner() *crypto.KeyPair { return in.signer }

// SignerHex is the local writer's public key, hex-encoded — the id
// every view row keys a self-authored action's author by.
func (in *Instance) SignerHex() string { return hex.EncodeToString(in.signer.PublicKey()) }

// Join runs the candidate side of the blind-pairing handshake over tr
// and, on success, appends claim-invite optimistically under username
// (spec §4.6's claim flow). The caller is responsible for wiring the
// derived SessionKeys into its replication transport; Instance itself
// only needs them to exist, not to use them locally (a single-process
// memlog instance has no transport to encrypt).
func (in *Instance) Join(ctx context.Context, tr pairing.Transport, token, username string) (*pairing.SessionKeys, *invite.Invite, error) {
	keys, _, err := pairing.Join(ctx, tr, token)
	if err != nil {
		return nil, nil, translatePairingErr("instance.Join", err)
	}
	inv, err := in.invites.Claim(ctx, token, in.signer, username)
	if err != nil {
		return nil, nil, translatePairingErr("instance.Join", err)
	}
	return keys, inv, nil
}

// Admit runs the admitting side of the blind-pairing handshake over tr
// for whichever invite the candidate's hello names, resolving it
// against this instance's own locally retained invite keypairs (spec
// §4.6's admit flow: "look up invite by candidate.inviteId").
func (in *Instance) Admit(ctx context.Context, tr pairing.Transport) (*pairing.SessionKeys, []byte, error) {
	keys, id, err := pairing.Admit(ctx, tr, in.invites.Resolve)
	if err != nil {
		return nil, id, translatePairingErr("instance.Admit", err)
	}
	return keys, id, nil
}

// AcceptPairings ranges over disc's inbound candidates, admitting each
// in its own goroutine so one bad candidate never blocks another
// (spec §7: "per-candidate errors are logged and the candidate
// dropped; the member registration keeps running"). It returns when
// ctx is cancelled or disc's Candidates channel closes.
func (in *Instance) AcceptPairings(ctx context.Context, disc pairing.Discovery) {
	for {
		select {
		case <-ctx.Done():
			return
		case cand, ok := <-disc.Candidates():
			if !ok {
				return
			}
			in.pairingGroup.Go(func() error {
				if _, _, err := in.Admit(ctx, cand.Transport); err != nil {
					in.lg.Warn("pairing candidate dropped", logger.Error(err))
				}
				return nil
			})
		}
	}
}

func translatePairingErr(op string, err error) error {
	switch {
	case errors.Is(err, invite.ErrExpired):
		return syncerr.New(syncerr.KindExpired, op, err)
	case errors.Is(err, pairing.ErrRejected):
		return syncerr.New(syncerr.KindNotFound, op, err)
	case errors.Is(err, pairing.ErrBadSignature):
		return syncerr.New(syncerr.KindBadSignature, op, err)
	default:
		return syncerr.New(syncerr.KindTransport, op, err)
	}
}

