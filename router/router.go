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

// Package router implements the apply engine of spec §4.5: it pulls
// batches from a logstream.Log, partitions them by action kind,
// validates each entry against a view.View, and dispatches the
// per-type handler that mutates the view.
package router

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/qalbehabib/syncbase/codec"
	"github.com/qalbehabib/syncbase/internal/logger"
	"github.com/qalbehabib/syncbase/internal/metrics"
	"github.com/qalbehabib/syncbase/logstream"
	"github.com/qalbehabib/syncbase/validator"
	"github.com/qalbehabib/syncbase/view"
)

// flushEvery is N in spec §4.5 step 2e.
const flushEvery = 20

// processedCollection holds the persistent processed-set as ordinary
// view rows, so it survives a restart the same way every other
// collection does; the row's only content is the marker itself.
const processedCollection = "_processed"

// Router owns the single apply loop reading from log and mutating v.
// Only the Router mutates v (spec §4.5 "Shared resources").
type Router struct {
	log logstream.Log
	v   *view.View
	ps  view.Store // backs the persistent processed-set
	lg  logger.Logger

	writerSeq map[string]int
}

// New builds a Router. processedStore backs the persistent
// processed-set; pass the same Store a view.View over the same
// underlying database would use, or a separate one if dedup state
// need not live alongside the materialized rows.
func New(log logstream.Log, v *view.View, processedStore view.Store, lg logger.Logger) *Router {
	if lg == nil {
		lg = logger.NewDefaultLogger()
	}
	return &Router{
		log:       log,
		v:         v,
		ps:        processedStore,
		lg:        lg,
		writerSeq: make(map[string]int),
	}
}

// kind groups an ActionType into the partition priority order spec
// §4.5 mandates: invite-ops, server-ops, channel-ops, message-ops,
// other.
type kind int

const (
	kindInvite kind = iota
	kindServer
	kindChannel
	kindMessage
	kindOther
)

func kindOf(t codec.ActionType) kind {
	switch t {
	case codec.CreateInvite, codec.ClaimInvite, codec.RevokeInvite:
		return kindInvite
	case codec.CreateServer, codec.UpdateServer:
		return kindServer
	case codec.CreateChannel, codec.UpdateChannel, codec.DeleteChannel:
		return kindChannel
	case codec.SendMessage, codec.EditMessage, codec.DeleteMessage:
		return kindMessage
	default:
		return kindOther
	}
}

var partitionOrder = [...]kind{kindInvite, kindServer, kindChannel, kindMessage, kindOther}

// RunOnce pulls one batch from the log and applies it: partition,
// dedup, ack, validate, dispatch, flush (spec §4.5 algorithm).
func (r *Router) RunOnce(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.BatchDuration.Observe(time.Since(start).Seconds()) }()

	batch, err := r.log.ReadBatch(ctx)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	partitions := make(map[kind][]logstream.Entry, len(partitionOrder))
	for _, e := range batch {
		k := kindOfEntry(e)
		partitions[k] = append(partitions[k], e)
	}

	sinceFlush := 0
	for _, k := range partitionOrder {
		entries := partitions[k]
		if len(entries) == 0 {
			continue
		}
		sortTiesByWriterKey(entries)

		for _, e := range entries {
			if err := r.applyEntry(ctx, e); err != nil {
				return err
			}
			sinceFlush++
			if sinceFlush >= flushEvery {
				if err := r.flushAll(ctx); err != nil {
					return err
				}
				sinceFlush = 0
			}
		}
		if err := r.flushAll(ctx); err != nil {
			return err
		}
		sinceFlush = 0
	}

	return r.flushAll(ctx)
}

// flushAll commits both the materialized view and the persistent
// processed-set at the same flush points, so dedup state never
// outlives a crash ahead of the rows it protects.
func (r *Router) flushAll(ctx context.Context) error {
	if err := r.v.Flush(ctx); err != nil {
		return err
	}
	return r.ps.Flush(ctx)
}

// Run repeatedly calls RunOnce at the given interval until ctx is
// cancelled, the way the corpus's poll loops are driven.
func (r *Router) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func kindOfEntry(e logstream.Entry) kind {
	t, ok := codec.ActionTypeFromString(e.Value.Type)
	if !ok {
		return kindOther
	}
	return kindOf(t)
}

// sortTiesByWriterKey applies the tie-break rule of spec §4.5: entries
// sharing an equal (type, payload.timestamp) are ordered by writer key
// lexicographic order; every other pair keeps its original log order,
// since sort.SliceStable treats non-tied pairs as equivalent.
func sortTiesByWriterKey(entries []logstream.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, oki := codec.ActionTypeFromString(entries[i].Value.Type)
		tj, okj := codec.ActionTypeFromString(entries[j].Value.Type)
		if !oki || !okj || ti != tj {
			return false
		}
		tsi, oki := payloadTimestamp(entries[i].Value.Payload)
		tsj, okj := payloadTimestamp(entries[j].Value.Payload)
		if !oki || !okj || tsi != tsj {
			return false
		}
		return entries[i].From.Hex() < entries[j].From.Hex()
	})
}

// payloadTimestamp extracts payload["timestamp"], tolerating both the
// native int64 a local CreateSignedAction produces and the float64 a
// JSON round trip over the wire produces.
func payloadTimestamp(payload map[string]interface{}) (int64, bool) {
	switch v := payload["timestamp"].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// actionID is the dedup key of spec §4.5/SPEC_FULL §4.5: (type,
// payload.timestamp, signer).
func actionID(t codec.ActionType, ts int64, signerHex string) string {
	return fmt.Sprintf("%s:%d:%s", t.TypeString(), ts, signerHex)
}

func (r *Router) applyEntry(ctx context.Context, e logstream.Entry) error {
	entryID := uuid.NewString()
	typeStr := e.Value.Type

	t, ok := codec.ActionTypeFromString(typeStr)
	if !ok {
		r.lg.Warn("unknown action type", logger.String("type", typeStr), logger.String("entry_id", entryID))
		metrics.ActionsRejected.WithLabelValues(typeStr, "unknown_type").Inc()
		return nil
	}

	signerHex := hexEncode(e.Value.Signer)
	ts, _ := payloadTimestamp(e.Value.Payload)
	id := actionID(t, ts, signerHex)

	processed, err := r.isProcessed(ctx, id)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	if seq, ok := r.nextSeq(e.From.Hex()); ok {
		_ = r.log.Ack(e.From, seq)
	}

	payload, err := codec.PayloadFromMap(t, e.Value.Payload)
	if err != nil {
		r.lg.Warn("malformed payload", logger.String("type", typeStr), logger.Error(err))
		metrics.ActionsRejected.WithLabelValues(typeStr, "malformed").Inc()
		return r.markProcessed(ctx, id)
	}

	optimistic := t == codec.ClaimInvite
	action := &validator.Action{Envelope: &e.Value, Type: t, Payload: payload, Optimistic: optimistic}

	valid, err := validator.Validate(ctx, action, r.v)
	if err != nil {
		return err
	}
	if !valid {
		r.lg.Warn("action rejected by validator", logger.String("type", typeStr), logger.String("entry_id", entryID))
		metrics.ActionsRejected.WithLabelValues(typeStr, "invalid").Inc()
		return r.markProcessed(ctx, id)
	}

	applied, err := dispatch(ctx, r.v, t, signerHex, payload)
	if err != nil {
		return err
	}
	if !applied {
		r.lg.Warn("action refused by handler", logger.String("type", typeStr), logger.String("entry_id", entryID))
		metrics.ActionsRejected.WithLabelValues(typeStr, "refused").Inc()
		return r.markProcessed(ctx, id)
	}

	metrics.ActionsApplied.WithLabelValues(typeStr).Inc()
	return r.markProcessed(ctx, id)
}

func (r *Router) nextSeq(writerHex string) (int, bool) {
	if writerHex == "" {
		return 0, false
	}
	seq := r.writerSeq[writerHex]
	r.writerSeq[writerHex] = seq + 1
	return seq, true
}

func (r *Router) isProcessed(ctx context.Context, id string) (bool, error) {
	_, err := r.ps.Get(ctx, processedCollection, id)
	if err == nil {
		return true, nil
	}
	if err == view.ErrNotFound {
		return false, nil
	}
	return false, err
}

func (r *Router) markProcessed(ctx context.Context, id string) error {
	err := r.ps.Insert(ctx, processedCollection, id, view.Row{"at": time.Now().UnixMilli()})
	if err == view.ErrPrimaryKeyConflict {
		return nil
	}
	return err
}

func hexEncode(b []byte) string { return hex.EncodeToString(b) }
