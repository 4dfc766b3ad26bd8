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

package view

import (
	"context"
	"encoding/hex"
	"errors"
)

// View wraps a Store with the six typed collections of spec §3 and the
// per-apply-step atomicity contract of spec §4.3: every mutation made
// between two Flush calls is either all visible or all absent.
type View struct {
	store Store
}

// New wraps store as a View.
func New(store Store) *View {
	return &View{store: store}
}

// Flush durably commits every mutation since the last Flush.
func (v *View) Flush(ctx context.Context) error {
	return v.store.Flush(ctx)
}

// Close releases the underlying store.
func (v *View) Close() error {
	return v.store.Close()
}

func messageKey(channelID, id string) string { return channelID + "/" + id }

// --- server ---------------------------------------------------------

// HasServer reports whether the single server row already exists.
func (v *View) HasServer(ctx context.Context) (bool, error) {
	rows, err := v.store.Find(ctx, collServer, Query{})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (v *View) CreateServer(ctx context.Context, s *Server) error {
	return v.store.Insert(ctx, collServer, s.ID, serverToRow(s))
}

func (v *View) GetServer(ctx context.Context, id string) (*Server, error) {
	row, err := v.store.Get(ctx, collServer, id)
	if err != nil {
		return nil, err
	}
	return rowToServer(row), nil
}

// GetTheServer returns the server row regardless of its ID, since a
// View holds at most one.
func (v *View) GetTheServer(ctx context.Context) (*Server, error) {
	rows, err := v.store.Find(ctx, collServer, Query{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rowToServer(rows[0]), nil
}

func (v *View) UpdateServer(ctx context.Context, s *Server) error {
	if err := v.store.Delete(ctx, collServer, s.ID); err != nil {
		return err
	}
	return v.store.Insert(ctx, collServer, s.ID, serverToRow(s))
}

// --- channel ----------------------------------------------------------

func (v *View) CreateChannel(ctx context.Context, c *Channel) error {
	return v.store.Insert(ctx, collChannel, c.ChannelID, channelToRow(c))
}

func (v *View) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	row, err := v.store.Get(ctx, collChannel, channelID)
	if err != nil {
		return nil, err
	}
	return rowToChannel(row), nil
}

func (v *View) FindChannelByName(ctx context.Context, name string) (*Channel, error) {
	row, err := v.store.FindOne(ctx, collChannel, Query{"name": name})
	if err != nil {
		return nil, err
	}
	return rowToChannel(row), nil
}

// ListChannels returns every channel row, in key order.
func (v *View) ListChannels(ctx context.Context) ([]*Channel, error) {
	rows, err := v.store.Find(ctx, collChannel, Query{})
	if err != nil {
		return nil, err
	}
	out := make([]*Channel, len(rows))
	for i, r := range rows {
		out[i] = rowToChannel(r)
	}
	return out, nil
}

func (v *View) UpdateChannel(ctx context.Context, c *Channel) error {
	if err := v.store.Delete(ctx, collChannel, c.ChannelID); err != nil {
		return err
	}
	return v.store.Insert(ctx, collChannel, c.ChannelID, channelToRow(c))
}

func (v *View) DeleteChannel(ctx context.Context, channelID string) error {
	return v.store.Delete(ctx, collChannel, channelID)
}

// --- message ----------------------------------------------------------

func (v *View) CreateMessage(ctx context.Context, m *Message) error {
	return v.store.Insert(ctx, collMessage, messageKey(m.ChannelID, m.ID), messageToRow(m))
}

func (v *View) GetMessage(ctx context.Context, channelID, id string) (*Message, error) {
	row, err := v.store.Get(ctx, collMessage, messageKey(channelID, id))
	if err != nil {
		return nil, err
	}
	return rowToMessage(row), nil
}

// FindMessageByID looks up a message across channels by its id alone,
// for validators that only have the message id to hand.
func (v *View) FindMessageByID(ctx context.Context, id string) (*Message, error) {
	row, err := v.store.FindOne(ctx, collMessage, Query{"id": id})
	if err != nil {
		return nil, err
	}
	return rowToMessage(row), nil
}

func (v *View) UpdateMessage(ctx context.Context, m *Message) error {
	if err := v.store.Delete(ctx, collMessage, messageKey(m.ChannelID, m.ID)); err != nil {
		return err
	}
	return v.store.Insert(ctx, collMessage, messageKey(m.ChannelID, m.ID), messageToRow(m))
}

// ListMessages returns every message in channelID, in key order
// (messages are keyed channelID/id, so this is lexicographic by message
// id, not insertion order).
func (v *View) ListMessages(ctx context.Context, channelID string) ([]*Message, error) {
	rows, err := v.store.Find(ctx, collMessage, Query{"channelId": channelID})
	if err != nil {
		return nil, err
	}
	out := make([]*Message, len(rows))
	for i, r := range rows {
		out[i] = rowToMessage(r)
	}
	return out, nil
}

// --- user ---------------------------------------------------------------

func (v *View) CreateUser(ctx context.Context, u *User) error {
	return v.store.Insert(ctx, collUser, u.ID, userToRow(u))
}

func (v *View) GetUser(ctx context.Context, id string) (*User, error) {
	row, err := v.store.Get(ctx, collUser, id)
	if err != nil {
		return nil, err
	}
	return rowToUser(row), nil
}

func (v *View) HasUser(ctx context.Context, id string) (bool, error) {
	_, err := v.GetUser(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// --- role -----------------------------------------------------------------

func (v *View) SetRole(ctx context.Context, r *Role) error {
	_ = v.store.Delete(ctx, collRole, r.UserID)
	return v.store.Insert(ctx, collRole, r.UserID, roleToRow(r))
}

func (v *View) GetRole(ctx context.Context, userID string) (*Role, error) {
	row, err := v.store.Get(ctx, collRole, userID)
	if err != nil {
		return nil, err
	}
	return rowToRole(row), nil
}

// --- invite ---------------------------------------------------------------

func inviteKey(id []byte) string { return hex.EncodeToString(id) }

func (v *View) CreateInvite(ctx context.Context, inv *Invite) error {
	return v.store.Insert(ctx, collInvite, inviteKey(inv.ID), inviteToRow(inv))
}

func (v *View) GetInvite(ctx context.Context, id []byte) (*Invite, error) {
	row, err := v.store.Get(ctx, collInvite, inviteKey(id))
	if err != nil {
		return nil, err
	}
	return rowToInvite(row), nil
}

func (v *View) UpdateInvite(ctx context.Context, inv *Invite) error {
	if err := v.store.Delete(ctx, collInvite, inviteKey(inv.ID)); err != nil {
		return err
	}
	return v.store.Insert(ctx, collInvite, inviteKey(inv.ID), inviteToRow(inv))
}
