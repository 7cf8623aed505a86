package daytimes

// Cache is a sliding window of three days centered on one offset: slot 0 is
// center-1, slot 1 is center and slot 2 is center+1.
//
// Cache is not safe for concurrent use; it is owned by the controller's loop.
type Cache struct {
	filled bool
	center int32
	slots  [3]DayRecord
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	c.Clear()
	return c
}

// Clear drops every slot and marks the cache empty.
func (c *Cache) Clear() {
	c.filled = false
	c.center = 0
	c.slots = [3]DayRecord{}
}

// Center returns the offset the window is centered on. ok is false when the
// cache is empty.
func (c *Cache) Center() (center int32, ok bool) {
	if !c.filled {
		return 0, false
	}
	return c.center, true
}

// Lookup returns the record for offset when it lies inside the window.
func (c *Cache) Lookup(offset int32) (DayRecord, bool) {
	if !c.filled {
		return DayRecord{}, false
	}
	// Compared in int64 so a window at either int32 limit does not wrap.
	switch int64(offset) - int64(c.center) {
	case -1:
		return c.slots[0], true
	case 0:
		return c.slots[1], true
	case 1:
		return c.slots[2], true
	}
	return DayRecord{}, false
}

// IngestBundle replaces the whole window with days centered on center. Each
// slot is valid when any of its fields is non-empty.
func (c *Cache) IngestBundle(center int32, days [3]Fields) {
	c.filled = true
	c.center = center
	for i, f := range days {
		c.slots[i] = newRecord(center-1+int32(i), f)
	}
}

// Snapshot returns a copy of the three slots.
func (c *Cache) Snapshot() [3]DayRecord {
	return c.slots
}
