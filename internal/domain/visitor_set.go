package domain

import (
	"bytes"
	"encoding/json"
)

// VisitorSet is an ordered set of hashed visitor IDs. Older documents stored
// a plain count instead of the list; such values decode to an empty set.
type VisitorSet struct {
	ids   []string
	index map[string]struct{}
}

func NewVisitorSet(ids ...string) VisitorSet {
	var s VisitorSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was not present before.
func (s *VisitorSet) Add(id string) bool {
	s.ensureIndex()
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

func (s VisitorSet) Has(id string) bool {
	if s.index != nil {
		_, ok := s.index[id]
		return ok
	}
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s VisitorSet) Len() int {
	return len(s.ids)
}

func (s VisitorSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Normalize drops duplicate and empty IDs and rebuilds the lookup index.
func (s *VisitorSet) Normalize() {
	ids := s.ids
	s.ids = make([]string, 0, len(ids))
	s.index = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

func (s *VisitorSet) ensureIndex() {
	if s.index == nil {
		s.Normalize()
	}
}

func (s VisitorSet) MarshalJSON() ([]byte, error) {
	if s.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.ids)
}

func (s *VisitorSet) UnmarshalJSON(data []byte) error {
	s.ids = nil
	s.index = nil

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, v := range raw {
		if id, ok := v.(string); ok {
			s.ids = append(s.ids, id)
		}
	}
	s.Normalize()
	return nil
}
