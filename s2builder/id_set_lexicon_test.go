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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIDSetLexiconEmptyAndSingletons(t *testing.T) {
	lex := NewIDSetLexicon()
	if got := lex.Add(nil); got != EmptySetID {
		t.Errorf("Add(nil) = %d, want EmptySetID", got)
	}
	if got := lex.IDSet(EmptySetID); len(got) != 0 {
		t.Errorf("IDSet(EmptySetID) = %v, want empty", got)
	}
	for _, id := range []int32{0, 5, 1 << 30} {
		if got := lex.Add([]int32{id}); got != id {
			t.Errorf("Add([%d]) = %d, want %d", id, got, id)
		}
		if got := lex.AddSingleton(id); got != id {
			t.Errorf("AddSingleton(%d) = %d", id, got)
		}
		if diff := cmp.Diff([]int32{id}, lex.IDSet(id)); diff != "" {
			t.Errorf("IDSet(%d) mismatch (-want +got):\n%s", id, diff)
		}
	}
	// Duplicates of a single value collapse to a singleton.
	if got := lex.Add([]int32{7, 7, 7}); got != 7 {
		t.Errorf("Add([7 7 7]) = %d, want 7", got)
	}
}

func TestIDSetLexiconSetsAreInterned(t *testing.T) {
	lex := NewIDSetLexicon()
	a := lex.Add([]int32{3, 1, 2})
	b := lex.Add([]int32{2, 1, 3, 1})
	c := lex.Add([]int32{1, 2})
	if a >= 0 || a == EmptySetID {
		t.Fatalf("Add([3 1 2]) = %d, want a negative set id", a)
	}
	if a != b {
		t.Errorf("equal sets got different ids %d and %d", a, b)
	}
	if a == c {
		t.Errorf("different sets got the same id %d", a)
	}
	if diff := cmp.Diff([]int32{1, 2, 3}, lex.IDSet(a)); diff != "" {
		t.Errorf("IDSet mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int32{1, 2}, lex.IDSet(c)); diff != "" {
		t.Errorf("IDSet mismatch (-want +got):\n%s", diff)
	}
}

func TestIDSetLexiconAddDoesNotModifyInput(t *testing.T) {
	lex := NewIDSetLexicon()
	in := []int32{9, 4, 9, 1}
	lex.Add(in)
	if diff := cmp.Diff([]int32{9, 4, 9, 1}, in); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestIDSetLexiconClearAndClone(t *testing.T) {
	lex := NewIDSetLexicon()
	id := lex.Add([]int32{1, 2})
	clone := lex.Clone()

	lex.Clear()
	other := lex.Add([]int32{5, 6, 7})
	if other != id {
		t.Errorf("first set after Clear got id %d, want %d", other, id)
	}
	if diff := cmp.Diff([]int32{1, 2}, clone.IDSet(id)); diff != "" {
		t.Errorf("clone changed after Clear (-want +got):\n%s", diff)
	}
	if got := clone.Add([]int32{2, 1}); got != id {
		t.Errorf("clone.Add([2 1]) = %d, want %d", got, id)
	}
}

func TestIDSetLexiconCloneNil(t *testing.T) {
	var lex *IDSetLexicon
	if got := lex.Clone(); got != nil {
		t.Errorf("Clone of a nil lexicon = %v, want nil", got)
	}
}
