package provider

// seenIDs remembers the most recent transaction ids accepted in this session.
// Not safe for concurrent use.
type seenIDs struct {
	ids   map[string]struct{}
	order []string
	next  int
}

func newSeenIDs(capacity int) *seenIDs {
	return &seenIDs{
		ids:   make(map[string]struct{}, capacity),
		order: make([]string, capacity),
	}
}

func (s *seenIDs) add(id string) {
	if _, ok := s.ids[id]; ok {
		return
	}
	if old := s.order[s.next]; old != "" {
		delete(s.ids, old)
	}
	s.order[s.next] = id
	s.ids[id] = struct{}{}
	s.next = (s.next + 1) % len(s.order)
}

func (s *seenIDs) contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}
