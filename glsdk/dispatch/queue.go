package dispatch

import (
	"container/list"
	"sync"
)

// entryQueue is the FIFO container behind the dispatcher. Pushing never blocks nor fails:
// the queue has no max size and entries wait for as long as it takes.
type entryQueue struct {
	queue      *list.List
	mutexQueue *sync.Mutex
}

func newEntryQueue() *entryQueue {
	return &entryQueue{
		queue:      list.New(),
		mutexQueue: &sync.Mutex{},
	}
}

// Push appends an entry to the tail
func (s *entryQueue) Push(entry *Entry) {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()
	s.queue.PushBack(entry)
}

// Front returns the head without removing it, nil when empty
func (s *entryQueue) Front() *Entry {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()
	front := s.queue.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*Entry)
}

// PopFront removes and returns the head, nil when empty
func (s *entryQueue) PopFront() *Entry {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()
	front := s.queue.Front()
	if front == nil {
		return nil
	}
	return s.queue.Remove(front).(*Entry)
}

// Count returns the number of queued entries
func (s *entryQueue) Count() int {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()
	return s.queue.Len()
}

// Items returns the queued entries in order
func (s *entryQueue) Items() []*Entry {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()
	items := make([]*Entry, 0, s.queue.Len())
	for e := s.queue.Front(); e != nil; e = e.Next() {
		items = append(items, e.Value.(*Entry))
	}
	return items
}

// PopAll empties the queue and returns the removed entries in order
func (s *entryQueue) PopAll() []*Entry {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()
	items := make([]*Entry, 0, s.queue.Len())
	for e := s.queue.Front(); e != nil; e = e.Next() {
		items = append(items, e.Value.(*Entry))
	}
	s.queue.Init()
	return items
}
