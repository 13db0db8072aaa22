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

// Package linkindex maps links to the streams or flows that use them, so that
// a link failure only invalidates the state riding on it.
package linkindex

import (
	"cmp"
	"maps"
	"slices"

	"github.com/sstreaming/sstreaming/private/topology"
)

// Index is a bidirectional association between links and ids. The zero value
// is not usable; use New.
type Index[T cmp.Ordered] struct {
	byLink map[topology.LinkKey]map[T]struct{}
	byID   map[T]map[topology.LinkKey]struct{}
}

// New creates an empty index.
func New[T cmp.Ordered]() *Index[T] {
	return &Index[T]{
		byLink: make(map[topology.LinkKey]map[T]struct{}),
		byID:   make(map[T]map[topology.LinkKey]struct{}),
	}
}

// Set replaces the links associated with id.
func (x *Index[T]) Set(id T, links []topology.LinkKey) {
	x.Remove(id)
	if len(links) == 0 {
		return
	}
	set := make(map[topology.LinkKey]struct{}, len(links))
	for _, l := range links {
		set[l] = struct{}{}
		ids, ok := x.byLink[l]
		if !ok {
			ids = make(map[T]struct{})
			x.byLink[l] = ids
		}
		ids[id] = struct{}{}
	}
	x.byID[id] = set
}

// Add associates a single additional link with id.
func (x *Index[T]) Add(id T, link topology.LinkKey) {
	set, ok := x.byID[id]
	if !ok {
		set = make(map[topology.LinkKey]struct{})
		x.byID[id] = set
	}
	set[link] = struct{}{}
	ids, ok := x.byLink[link]
	if !ok {
		ids = make(map[T]struct{})
		x.byLink[link] = ids
	}
	ids[id] = struct{}{}
}

// Remove drops all associations of id.
func (x *Index[T]) Remove(id T) {
	for l := range x.byID[id] {
		ids := x.byLink[l]
		delete(ids, id)
		if len(ids) == 0 {
			delete(x.byLink, l)
		}
	}
	delete(x.byID, id)
}

// Users returns the ids using any of the given links, sorted ascending.
func (x *Index[T]) Users(links ...topology.LinkKey) []T {
	set := make(map[T]struct{})
	for _, l := range links {
		for id := range x.byLink[l] {
			set[id] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// Links returns the links associated with id.
func (x *Index[T]) Links(id T) []topology.LinkKey {
	return slices.SortedFunc(maps.Keys(x.byID[id]), compareLinks)
}

// Len returns the number of ids with at least one link.
func (x *Index[T]) Len() int {
	return len(x.byID)
}

func compareLinks(a, b topology.LinkKey) int {
	if c := cmp.Compare(a.A, b.A); c != 0 {
		return c
	}
	return cmp.Compare(a.B, b.B)
}
