package retail

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SnapshotStore is the persistence collaborator: it loads and durably
// saves whole snapshots. Implementations live in internal/storage.
type SnapshotStore interface {
	// Load returns the stored snapshot, or (nil, nil) when the store is
	// empty and the engine should seed a fresh one.
	Load() (*Snapshot, error)
	Save(*Snapshot) error
}

// Engine is the sale–inventory–notification consistency core. It owns the
// current snapshot and serializes every mutation: a mutation clones the
// snapshot, rewrites the clone, saves it through the store and only then
// installs it. A failed save therefore changes nothing.
type Engine struct {
	mu     sync.Mutex
	store  SnapshotStore
	snap   *Snapshot
	flags  PolicyFlags
	logger *zap.Logger

	lastSaleID int64
	lastLogID  int64
}

// NewEngine loads the snapshot from the store, seeding one if the store is
// empty. A nil logger falls back to a no-op logger.
func NewEngine(store SnapshotStore, flags PolicyFlags, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if snap == nil {
		snap = NewSnapshot()
		if err := store.Save(snap); err != nil {
			return nil, fmt.Errorf("saving seed snapshot: %w", err)
		}
		logger.Info("seeded new snapshot",
			zap.Int("businesses", len(snap.Businesses)),
			zap.Int("users", len(snap.Users)),
		)
	}
	e := &Engine{store: store, snap: snap, flags: flags, logger: logger}
	for _, s := range snap.Sales {
		if s.ID > e.lastSaleID {
			e.lastSaleID = s.ID
		}
	}
	for _, l := range snap.Logs {
		if l.ID > e.lastLogID {
			e.lastLogID = l.ID
		}
	}
	return e, nil
}

// commit saves the mutated clone and installs it as the current snapshot.
// Callers must hold e.mu.
func (e *Engine) commit(next *Snapshot) error {
	if err := e.store.Save(next); err != nil {
		e.logger.Error("snapshot save failed, mutation discarded", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	e.snap = next
	return nil
}

// nextSaleID returns a unix-milli derived id, bumped to stay strictly
// monotonic when two mutations land in the same millisecond.
func (e *Engine) nextSaleID() int64 {
	id := time.Now().UnixMilli()
	if id <= e.lastSaleID {
		id = e.lastSaleID + 1
	}
	e.lastSaleID = id
	return id
}

// appendLog prepends an action log entry to the clone, newest first.
func (e *Engine) appendLog(s *Snapshot, user, action, details string) {
	e.lastLogID++
	s.Logs = append([]LogEntry{{
		ID:      e.lastLogID,
		Date:    time.Now(),
		User:    user,
		Action:  action,
		Details: details,
	}}, s.Logs...)
}

// Flags returns the injected policy configuration.
func (e *Engine) Flags() PolicyFlags { return e.flags }

// FindUser resolves an actor from the seeded user set by name.
func (e *Engine) FindUser(name string) (Actor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	u := e.snap.FindUser(name)
	if u == nil {
		return Actor{}, false
	}
	return Actor{Name: u.Name, Role: u.Role}, true
}

// Businesses returns the fixed business set.
func (e *Engine) Businesses() []Business {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Business(nil), e.snap.Businesses...)
}

// Products returns a copy of the catalog.
func (e *Engine) Products() []Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Product(nil), e.snap.Products...)
}

// Sales returns copies of all sales, optionally filtered by business
// (0 means all).
func (e *Engine) Sales(businessID int64) []Sale {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Sale, 0, len(e.snap.Sales))
	for _, s := range e.snap.Sales {
		if businessID != 0 && s.BusinessID != businessID {
			continue
		}
		cp := *s
		cp.Items = append([]SaleItem(nil), s.Items...)
		out = append(out, cp)
	}
	return out
}

// Sale returns a copy of one sale.
func (e *Engine) Sale(id int64) (Sale, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.snap.FindSale(id)
	if s == nil {
		return Sale{}, ErrNotFound
	}
	cp := *s
	cp.Items = append([]SaleItem(nil), s.Items...)
	return cp, nil
}

// Notifications returns copies of all notifications.
func (e *Engine) Notifications() []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Notification, 0, len(e.snap.Notifications))
	for _, n := range e.snap.Notifications {
		out = append(out, *n)
	}
	return out
}

// Waste returns the waste records, optionally filtered by business
// (0 means all).
func (e *Engine) Waste(businessID int64) []WasteRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]WasteRecord, 0, len(e.snap.Waste))
	for _, w := range e.snap.Waste {
		if businessID != 0 && w.BusinessID != businessID {
			continue
		}
		out = append(out, w)
	}
	return out
}

// StockByBusiness returns the inventory records of one business.
func (e *Engine) StockByBusiness(businessID int64) []InventoryRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]InventoryRecord, 0)
	for _, rec := range e.snap.Inventory {
		if rec.BusinessID == businessID {
			out = append(out, rec)
		}
	}
	return out
}

// Stock returns the quantity of one product at one business.
func (e *Engine) Stock(businessID, productID int64) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Stock(businessID, productID)
}

// Logs returns the action log, newest first.
func (e *Engine) Logs() []LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]LogEntry(nil), e.snap.Logs...)
}
