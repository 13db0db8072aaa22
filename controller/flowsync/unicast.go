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

package flowsync

import (
	"context"

	"github.com/sstreaming/sstreaming/pkg/addr"
)

// Installed is the unicast state installed at one node.
type Installed struct {
	Node   addr.DPID   `json:"node"`
	Flow   addr.FlowID `json:"flow"`
	EthDst addr.MAC    `json:"eth_dst"`
	Ports  []addr.Port `json:"ports"`
}

// Grouped reports whether the state uses a select group.
func (i Installed) Grouped() bool {
	return len(i.Ports) > 1
}

// InstallUnicast installs a flow forwarding frames for ethDst out of ports.
// With more than one port, the frames are spread over a select group.
func (s *Synchronizer) InstallUnicast(ctx context.Context, node addr.DPID, flow addr.FlowID,
	ethDst addr.MAC, ports []addr.Port, idleTimeout uint16) Installed {

	inst := Installed{Node: node, Flow: flow, EthDst: ethDst, Ports: NewEntry(0, ports...).Out}
	m := FlowMod{
		Command:     Add,
		Priority:    PriorityForward,
		Match:       Match{EthDst: &inst.EthDst},
		IdleTimeout: idleTimeout,
	}
	switch {
	case inst.Grouped():
		buckets := make([]Bucket, 0, len(inst.Ports))
		for _, p := range inst.Ports {
			buckets = append(buckets, Bucket{Weight: 1, Actions: []Action{Output(p)}})
		}
		s.groupMod(ctx, node, GroupMod{
			Command: Add,
			Type:    GroupTypeSelect,
			GroupID: UnicastGroupID(flow),
			Buckets: buckets,
		})
		m.Actions = []Action{Group(UnicastGroupID(flow))}
	case len(inst.Ports) == 1:
		m.Actions = []Action{Output(inst.Ports[0])}
	}
	s.flowMod(ctx, node, m)
	return inst
}

// RemoveUnicast removes state previously installed with InstallUnicast.
func (s *Synchronizer) RemoveUnicast(ctx context.Context, inst Installed) {
	m := FlowMod{
		Command:  Delete,
		Priority: PriorityForward,
		Match:    Match{EthDst: &inst.EthDst},
		OutPort:  PortAny,
		OutGroup: GroupAny,
	}
	if inst.Grouped() {
		m.OutGroup = UnicastGroupID(inst.Flow)
	}
	s.flowMod(ctx, inst.Node, m)
	if inst.Grouped() {
		s.groupMod(ctx, inst.Node, GroupMod{
			Command: Delete,
			Type:    GroupTypeSelect,
			GroupID: UnicastGroupID(inst.Flow),
		})
	}
}
