// Copyright 2026 The sStreaming Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package flowsync translates differences between the forwarding entries of
// a node into the minimal sequence of switch requests.
//
// All requests are sent delete-first: a group that is about to be replaced is
// removed before the flow referencing it, and new groups exist before the
// flow that points at them is installed.
package flowsync

import (
	"fmt"
	"slices"

	"github.com/sstreaming/sstreaming/pkg/addr"
)

// Entry is the forwarding state of one stream at one node. The zero value
// means that no rule is installed. Out is sorted and free of duplicates;
// NewEntry takes care of that.
type Entry struct {
	In  addr.Port
	Out []addr.Port
}

// NewEntry creates an entry with ingress port in and the given output ports.
func NewEntry(in addr.Port, out ...addr.Port) Entry {
	if len(out) == 0 {
		return Entry{In: in}
	}
	sorted := slices.Clone(out)
	slices.Sort(sorted)
	return Entry{In: in, Out: slices.Compact(sorted)}
}

// Empty reports whether e installs no rule.
func (e Entry) Empty() bool {
	return e.In == 0
}

// Equal reports whether both entries describe the same rule.
func (e Entry) Equal(o Entry) bool {
	return e.In == o.In && slices.Equal(e.Out, o.Out)
}

func (e Entry) String() string {
	if e.Empty() {
		return "<none>"
	}
	return fmt.Sprintf("in:%s out:%v", e.In, e.Out)
}

// StreamGroupID is the group id used for the multicast group of a stream.
func StreamGroupID(id addr.StreamID) uint32 {
	return uint32(id)
}

// UnicastGroupID is the group id used for the select group of a unicast
// flow. Bit 30 keeps it disjoint from stream group ids.
func UnicastGroupID(id addr.FlowID) uint32 {
	return uint32(id) | 1<<30
}

// MeterID is the meter id used for a stream. OpenFlow meter ids start at 1.
func MeterID(id addr.StreamID) uint32 {
	return uint32(id) + 1
}
