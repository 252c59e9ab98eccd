package hits

import (
	"errors"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/tpctrack/model"
)

var (
	// ErrCapacityExceeded is returned by Add past the reserved capacity.
	ErrCapacityExceeded = errors.New("hit table capacity exceeded")

	// ErrNotFinalized is returned when reading an unsorted table.
	ErrNotFinalized = errors.New("hit table not finalized")
)

// DuplicatePolicy selects how Finalize treats hits sharing an external id.
type DuplicatePolicy int

const (
	// LastWriteWins maps a duplicated id to the hit that sorts last.
	LastWriteWins DuplicatePolicy = iota
	// FirstWriteWins maps a duplicated id to the hit that sorts first.
	FirstWriteWins
	// RejectDuplicates makes Finalize fail with *DuplicateIDError.
	RejectDuplicates
)

// String returns the policy name.
func (p DuplicatePolicy) String() string {
	switch p {
	case LastWriteWins:
		return "last-write-wins"
	case FirstWriteWins:
		return "first-write-wins"
	case RejectDuplicates:
		return "reject"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// DuplicateIDError reports an external id seen more than once.
type DuplicateIDError struct {
	ID    int32
	First int
	Again int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate hit id %d at table positions %d and %d", e.ID, e.First, e.Again)
}

// Table is the flat hit array of one event.
type Table struct {
	policy    DuplicatePolicy
	capacity  int
	hits      []model.Hit
	index     map[int32]int
	used      *roaring.Bitmap
	finalized bool
}

// NewTable creates an empty table with the given duplicate policy.
func NewTable(policy DuplicatePolicy) *Table {
	return &Table{
		policy: policy,
		index:  make(map[int32]int),
		used:   roaring.New(),
	}
}

// Policy returns the configured duplicate policy.
func (t *Table) Policy() DuplicatePolicy { return t.policy }

// Reset discards all hits and the id map.
func (t *Table) Reset() {
	t.hits = t.hits[:0]
	t.capacity = 0
	clear(t.index)
	t.used.Clear()
	t.finalized = false
}

// Reserve fixes the staging capacity to n hits.
func (t *Table) Reserve(n int) {
	if n < 0 {
		n = 0
	}
	t.capacity = n
	if cap(t.hits) < n {
		t.hits = slices.Grow(t.hits[:0], n)
	}
}

// Add stages a hit. Tables without a reservation grow on demand.
func (t *Table) Add(h model.Hit) error {
	if t.capacity > 0 && len(t.hits) >= t.capacity {
		return ErrCapacityExceeded
	}
	t.hits = append(t.hits, h)
	t.finalized = false
	return nil
}

// Finalize sorts the staged hits by ascending row, keeping input order on
// ties, and rebuilds the id map according to the duplicate policy.
func (t *Table) Finalize() error {
	slices.SortStableFunc(t.hits, func(a, b model.Hit) int {
		return a.Row - b.Row
	})

	clear(t.index)
	t.used.Clear()
	for i := range t.hits {
		if t.hits[i].Used {
			t.used.Add(uint32(i))
		}
		id := t.hits[i].ID
		if prev, ok := t.index[id]; ok {
			switch t.policy {
			case FirstWriteWins:
				continue
			case RejectDuplicates:
				return &DuplicateIDError{ID: id, First: prev, Again: i}
			}
		}
		t.index[id] = i
	}
	t.finalized = true
	return nil
}

// Finalized reports whether the table is sorted and indexed.
func (t *Table) Finalized() bool { return t.finalized }

// Len returns the number of hits.
func (t *Table) Len() int { return len(t.hits) }

// Hit returns hit i.
func (t *Table) Hit(i int) *model.Hit { return &t.hits[i] }

// Hits returns the hit slice. Callers must not reorder it.
func (t *Table) Hits() []model.Hit { return t.hits }

// Index returns the table position of the hit with external id.
func (t *Table) Index(id int32) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// MarkUsed flags hit i as claimed.
func (t *Table) MarkUsed(i int) {
	t.hits[i].Used = true
	t.used.Add(uint32(i))
}

// IsUsed reports whether hit i is claimed.
func (t *Table) IsUsed(i int) bool { return t.hits[i].Used }

// UsedBitmap returns a copy of the set of claimed hit positions.
func (t *Table) UsedBitmap() *roaring.Bitmap { return t.used.Clone() }

// Unused returns the positions of hits not in claimed. The table's own used
// set is added to claimed first.
func (t *Table) Unused(claimed *roaring.Bitmap) *roaring.Bitmap {
	all := roaring.New()
	all.AddRange(0, uint64(len(t.hits)))
	all.AndNot(t.used)
	if claimed != nil {
		all.AndNot(claimed)
	}
	return all
}
