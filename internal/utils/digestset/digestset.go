// Package digestset provides a bounded, insertion-ordered set of transaction
// digests used to suppress repeated alerts across poll cycles.
package digestset

import "sync"

// DefaultCapacity is the number of digests remembered per subscription.
const DefaultCapacity = 1000

// Set is a FIFO bounded set. When full, adding a new digest evicts exactly
// the oldest inserted one. Membership and eviction are O(1).
type Set struct {
	mu       sync.Mutex
	capacity int
	members  map[string]struct{}
	// ring holds digests in insertion order, head points at the oldest
	ring []string
	head int
	size int
}

func New(capacity int) *Set {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Set{
		capacity: capacity,
		members:  make(map[string]struct{}, capacity),
		ring:     make([]string, capacity),
	}
}

func (s *Set) Has(digest string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.members[digest]
	return ok
}

// Add records digest. Adding a digest that is already present is a no-op and
// does not refresh its position.
func (s *Set) Add(digest string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[digest]; ok {
		return
	}

	if s.size == s.capacity {
		oldest := s.ring[s.head]
		delete(s.members, oldest)
		s.ring[s.head] = digest
		s.head = (s.head + 1) % s.capacity
	} else {
		s.ring[(s.head+s.size)%s.capacity] = digest
		s.size++
	}
	s.members[digest] = struct{}{}
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.size
}

func (s *Set) Cap() int {
	return s.capacity
}
