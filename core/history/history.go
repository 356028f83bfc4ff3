// Package history keeps the AFT transaction history: a 128 slot ring of
// finished transfers that the host reads back after a link failure.
package history

import (
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
)

const (
	// Size is the number of slots in the ring.
	Size = 128
	// MaxIndex is the highest absolute index, reported to the host in long poll 74.
	MaxIndex uint8 = Size - 1
)

// Persister writes a history slot to durable storage.
type Persister interface {
	PutHistory(slot uint8, rec dto.TransferRecord, cursor uint8) error
}

type persistJob struct {
	seq    uint64
	slot   uint8
	rec    dto.TransferRecord
	cursor uint8
}

// Buffer is the history ring. It is safe for concurrent use.
type Buffer struct {
	mu      sync.RWMutex
	entries [Size]*dto.TransferRecord
	cursor  uint8

	persister Persister
	// pending holds the latest unwritten state of each slot.
	pmu       sync.Mutex
	pending   map[uint8]persistJob
	seq       uint64
	closed    bool
	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates an empty buffer. A nil persister keeps history in memory only.
func New(persister Persister) *Buffer {
	b := &Buffer{persister: persister}
	if persister != nil {
		b.pending = make(map[uint8]persistJob)
		b.wake = make(chan struct{}, 1)
		b.stop = make(chan struct{})
		b.done = make(chan struct{})
		go b.persistLoop()
	}
	return b
}

// Restore loads previously persisted slots. Call it before serving requests.
func (b *Buffer) Restore(entries map[uint8]dto.TransferRecord, cursor uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for slot, rec := range entries {
		if slot > MaxIndex {
			continue
		}
		clone := rec.Clone()
		clone.TransactionIndex = slot
		b.entries[slot] = &clone
	}
	b.cursor = cursor % Size
}

// AddEntry stores rec at the write cursor, advances the cursor and returns the
// slot the record was assigned. Persistence happens in the background.
func (b *Buffer) AddEntry(rec dto.TransferRecord) uint8 {
	b.mu.Lock()
	slot := b.cursor
	clone := rec.Clone()
	clone.TransactionIndex = slot
	b.entries[slot] = &clone
	b.cursor = (slot + 1) % Size
	// queued under mu so pending writes keep the cursor order
	b.persist(persistJob{slot: slot, rec: clone.Clone(), cursor: b.cursor})
	b.mu.Unlock()

	return slot
}

// GetHistoryEntry returns the record for a host index. Indices below 0x80
// are absolute slots; 0x80 and above count back from the write cursor, so
// 0xFF is the most recent entry. Empty slots yield NoTransferInfoAvailable.
func (b *Buffer) GetHistoryEntry(requested uint8) dto.TransferRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	slot := b.resolve(requested)
	entry := b.entries[slot]
	if entry == nil {
		return dto.NoTransferInfo(requested)
	}
	return entry.Clone()
}

// Resolve maps a host index to an absolute slot.
func (b *Buffer) Resolve(requested uint8) uint8 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.resolve(requested)
}

func (b *Buffer) resolve(requested uint8) uint8 {
	if requested <= MaxIndex {
		return requested
	}
	back := 0x100 - int(requested)
	return uint8((int(b.cursor) - back + Size) % Size)
}

// Contains reports whether any stored entry carries txID.
func (b *Buffer) Contains(txID string) bool {
	if txID == "" {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, e := range b.entries {
		if e != nil && e.TransactionID == txID {
			return true
		}
	}
	return false
}

// Cursor returns the slot the next entry will be written to.
func (b *Buffer) Cursor() uint8 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cursor
}

// Close stops the persist loop after the pending writes are flushed.
// Entries added after Close stay in memory only.
func (b *Buffer) Close() {
	if b.persister == nil {
		return
	}
	b.closeOnce.Do(func() {
		b.pmu.Lock()
		b.closed = true
		b.pmu.Unlock()

		close(b.stop)
		<-b.done
	})
}

// persist queues job, replacing any unwritten state of the same slot.
func (b *Buffer) persist(job persistJob) {
	if b.persister == nil {
		return
	}

	b.pmu.Lock()
	if b.closed {
		b.pmu.Unlock()
		log.Warnf("history slot %d not persisted: buffer closed", job.slot)
		return
	}
	b.seq++
	job.seq = b.seq
	b.pending[job.slot] = job
	b.pmu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Buffer) persistLoop() {
	defer close(b.done)

	for {
		select {
		case <-b.wake:
			b.flush()
		case <-b.stop:
			b.flush()
			return
		}
	}
}

// flush writes the pending slots in the order they were added, so the
// cursor stored last is the newest one.
func (b *Buffer) flush() {
	b.pmu.Lock()
	jobs := make([]persistJob, 0, len(b.pending))
	for _, job := range b.pending {
		jobs = append(jobs, job)
	}
	b.pending = make(map[uint8]persistJob)
	b.pmu.Unlock()

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].seq < jobs[j].seq })
	for _, job := range jobs {
		if err := b.persister.PutHistory(job.slot, job.rec, job.cursor); err != nil {
			log.Errorf("failed to persist history slot %d: %v", job.slot, err)
		}
	}
}
