// Copyright 2023 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS-IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package s2builder

import (
	"encoding/binary"
	"math"
	"sort"
)

// IDSetID identifies a set of non-negative integers stored in an IDSetLexicon.
//
// Singleton sets are represented by their only element (which is
// non-negative), the empty set by EmptySetID, and every other set by a
// negative number obtained by complementing its sequence number.
type IDSetID = int32

// EmptySetID is the ID of the empty set in every IDSetLexicon.
const EmptySetID IDSetID = math.MinInt32

// IDSetLexicon interns sets of non-negative int32 values. Adding the same set
// twice (in any order, with any duplicates) returns the same ID.
type IDSetLexicon struct {
	ids    []int32
	begins []int32
	index  map[string]IDSetID

	tmp []int32
	key []byte
}

// NewIDSetLexicon returns an empty lexicon.
func NewIDSetLexicon() *IDSetLexicon {
	return &IDSetLexicon{
		begins: []int32{0},
		index:  make(map[string]IDSetID),
	}
}

// Clear removes all sets from the lexicon.
func (l *IDSetLexicon) Clear() {
	l.ids = nil
	l.begins = []int32{0}
	l.index = make(map[string]IDSetID)
}

// Add interns the given set of ids and returns its ID. The slice is not
// modified.
func (l *IDSetLexicon) Add(ids []int32) IDSetID {
	switch len(ids) {
	case 0:
		return EmptySetID
	case 1:
		return ids[0]
	}

	l.tmp = append(l.tmp[:0], ids...)
	sort.Slice(l.tmp, func(i, j int) bool { return l.tmp[i] < l.tmp[j] })
	n := 1
	for i := 1; i < len(l.tmp); i++ {
		if l.tmp[i] != l.tmp[n-1] {
			l.tmp[n] = l.tmp[i]
			n++
		}
	}
	l.tmp = l.tmp[:n]
	if n == 1 {
		return l.tmp[0]
	}

	l.key = l.key[:0]
	for _, id := range l.tmp {
		l.key = binary.LittleEndian.AppendUint32(l.key, uint32(id))
	}
	if setID, ok := l.index[string(l.key)]; ok {
		return setID
	}
	seq := int32(len(l.begins) - 1)
	l.ids = append(l.ids, l.tmp...)
	l.begins = append(l.begins, int32(len(l.ids)))
	setID := ^seq
	l.index[string(l.key)] = setID
	return setID
}

// AddSingleton returns the ID of the set containing only id.
func (l *IDSetLexicon) AddSingleton(id int32) IDSetID {
	return id
}

// IDSet returns the sorted elements of the set with the given ID. The
// returned slice must not be modified.
func (l *IDSetLexicon) IDSet(setID IDSetID) []int32 {
	if setID >= 0 {
		return []int32{setID}
	}
	if setID == EmptySetID {
		return nil
	}
	seq := ^setID
	return l.ids[l.begins[seq]:l.begins[seq+1]]
}

// Clone returns a deep copy of the lexicon. Cloning a nil lexicon returns nil.
func (l *IDSetLexicon) Clone() *IDSetLexicon {
	if l == nil {
		return nil
	}
	c := &IDSetLexicon{
		ids:    append([]int32(nil), l.ids...),
		begins: append([]int32(nil), l.begins...),
		index:  make(map[string]IDSetID, len(l.index)),
	}
	for k, v := range l.index {
		c.index[k] = v
	}
	return c
}
