package retail

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies the privilege level of an acting user.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
)

// Actor is the user on whose behalf an operation runs. Session handling
// lives outside the engine; callers resolve the actor and pass it in.
type Actor struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Business is one of the fixed set of locations. Seeded once, immutable.
type Business struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// User is a seeded reference entry used to resolve actors by name.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Product is a catalog entry. Cost and price are non-negative amounts.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Alias    string          `json:"alias,omitempty"`
	Category string          `json:"category,omitempty"`
	Cost     decimal.Decimal `json:"cost"`
	Price    decimal.Decimal `json:"price"`
}

// InventoryRecord holds the stock level of one product at one business.
// Quantity is signed: negative means oversold/unreconciled stock, which is
// tolerated. At most one record exists per (business, product) pair and an
// absent record reads as zero.
type InventoryRecord struct {
	BusinessID int64 `json:"business_id"`
	ProductID  int64 `json:"product_id"`
	Quantity   int64 `json:"quantity"`
}

// SaleItem is one line of a sale. Name and price are captured at sale time
// so later catalog edits do not rewrite history.
type SaleItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Qty       int64           `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type SaleStatus string

const (
	// StatusRegistered: created by a non-privileged actor, awaiting a day
	// closure. The transient "open" cart state never reaches the engine.
	StatusRegistered SaleStatus = "registered"
	// StatusPending: part of a day closure awaiting approval.
	StatusPending SaleStatus = "pending"
	StatusClosed  SaleStatus = "closed"
	// StatusRejected: terminal; the sale is retained so it can be surfaced.
	StatusRejected SaleStatus = "rejected"
)

type SaleType string

const (
	SaleTypeSale         SaleType = "sale"
	SaleTypeDailyClosure SaleType = "daily_closure"
)

// Sale is the central entity: either an individual sale with items, or a
// daily_closure composite that aggregates a seller's registered sales.
// Total always equals the sum of qty*price over Items for item-bearing
// sales; for composites it is the expected total at closure time.
type Sale struct {
	ID         int64           `json:"id"`
	Type       SaleType        `json:"type"`
	Date       time.Time       `json:"date"`
	BusinessID int64           `json:"business_id"`
	Seller     string          `json:"seller"`
	Items      []SaleItem      `json:"items,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Status     SaleStatus      `json:"status"`

	// Closure bookkeeping, zero-valued on individual sales.
	OpenTime         string          `json:"open_time,omitempty"`
	CloseTime        string          `json:"close_time,omitempty"`
	CashAmount       decimal.Decimal `json:"cash_amount"`
	TransferAmount   decimal.Decimal `json:"transfer_amount"`
	CashFaltante     decimal.Decimal `json:"cash_faltante"`
	CashSobrante     decimal.Decimal `json:"cash_sobrante"`
	TransferFaltante decimal.Decimal `json:"transfer_faltante"`
	TransferSobrante decimal.Decimal `json:"transfer_sobrante"`
	AdditionalInfo   string          `json:"additional_info,omitempty"`
	SalesCount       int             `json:"sales_count,omitempty"`

	// ClosureID groups an individual sale under the composite that closed
	// it. Approver is stamped when a pending closure is approved.
	ClosureID int64  `json:"closure_id,omitempty"`
	Approver  string `json:"approver,omitempty"`
}

// IsClosure reports whether the sale is a daily_closure composite.
func (s *Sale) IsClosure() bool { return s.Type == SaleTypeDailyClosure }

type NotificationType string

const (
	NotificationClosureRequest NotificationType = "closure_request"
	NotificationDeleteRequest  NotificationType = "delete_request"
)

type NotificationStatus string

const (
	NotificationPending  NotificationStatus = "pending"
	NotificationApproved NotificationStatus = "approved"
	NotificationRejected NotificationStatus = "rejected"
)

type CommandKind string

const (
	CommandApplyClosure  CommandKind = "apply_closure"
	CommandApplyDeletion CommandKind = "apply_deletion"
)

// Command is the deferred mutation a notification carries. It is fixed at
// request time and executed verbatim on approval, so resolution never has
// to re-derive intent from the notification type.
type Command struct {
	Kind   CommandKind `json:"kind"`
	SaleID int64       `json:"sale_id"`
}

// Notification is a pending request for a mutation the requesting actor
// could not perform directly.
type Notification struct {
	ID         string             `json:"id"`
	Type       NotificationType   `json:"type"`
	RefID      int64              `json:"ref_id"`
	BusinessID int64              `json:"business_id"`
	Title      string             `json:"title"`
	Message    string             `json:"message"`
	Status     NotificationStatus `json:"status"`
	ResolvedBy string             `json:"resolved_by,omitempty"`
	Date       time.Time          `json:"date"`
	Command    Command            `json:"command"`
}

// WasteRecord (merma) is a loss write-off. It reduces inventory directly
// with no approval tier.
type WasteRecord struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	BusinessID int64     `json:"business_id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int64     `json:"quantity"`
	User       string    `json:"user"`
}

// LogEntry records one engine mutation, newest first.
type LogEntry struct {
	ID      int64     `json:"id"`
	Date    time.Time `json:"date"`
	User    string    `json:"user"`
	Action  string    `json:"action"`
	Details string    `json:"details"`
}

// Snapshot is the whole in-memory database: the flat document the
// persistence collaborator loads and saves as a unit.
type Snapshot struct {
	Businesses    []Business        `json:"businesses"`
	Users         []User            `json:"users"`
	Products      []Product         `json:"products"`
	Inventory     []InventoryRecord `json:"inventory"`
	Sales         []*Sale           `json:"sales"`
	Waste         []WasteRecord     `json:"waste"`
	Notifications []*Notification   `json:"notifications"`
	Logs          []LogEntry        `json:"logs"`
}

// NewSnapshot returns a seeded snapshot with the fixed business set and the
// default users, mirroring first-run initialization.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Businesses: []Business{
			{ID: 1, Name: "Almacén MCH", Code: "ALM"},
			{ID: 2, Name: "MCH 1", Code: "MCH1"},
			{ID: 3, Name: "MCH 2", Code: "MCH2"},
		},
		Users: []User{
			{ID: 1, Name: "Dueño", Role: RoleOwner},
			{ID: 2, Name: "Vendedor 1", Role: RoleSeller},
			{ID: 3, Name: "Administrador", Role: RoleAdmin},
		},
	}
}

// Clone deep-copies the snapshot. Mutations run on a clone that is only
// installed after it has been durably saved.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Businesses: append([]Business(nil), s.Businesses...),
		Users:      append([]User(nil), s.Users...),
		Products:   append([]Product(nil), s.Products...),
		Inventory:  append([]InventoryRecord(nil), s.Inventory...),
		Waste:      append([]WasteRecord(nil), s.Waste...),
		Logs:       append([]LogEntry(nil), s.Logs...),
	}
	if s.Sales != nil {
		c.Sales = make([]*Sale, len(s.Sales))
		for i, sale := range s.Sales {
			cp := *sale
			cp.Items = append([]SaleItem(nil), sale.Items...)
			c.Sales[i] = &cp
		}
	}
	if s.Notifications != nil {
		c.Notifications = make([]*Notification, len(s.Notifications))
		for i, n := range s.Notifications {
			cp := *n
			c.Notifications[i] = &cp
		}
	}
	return c
}

// FindSale returns the sale with the given id, or nil.
func (s *Snapshot) FindSale(id int64) *Sale {
	for _, sale := range s.Sales {
		if sale.ID == id {
			return sale
		}
	}
	return nil
}

// FindProduct returns the product with the given id, or nil.
func (s *Snapshot) FindProduct(id int64) *Product {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i]
		}
	}
	return nil
}

// FindBusiness returns the business with the given id, or nil.
func (s *Snapshot) FindBusiness(id int64) *Business {
	for i := range s.Businesses {
		if s.Businesses[i].ID == id {
			return &s.Businesses[i]
		}
	}
	return nil
}

// FindUser resolves a seeded user by name, or nil.
func (s *Snapshot) FindUser(name string) *User {
	for i := range s.Users {
		if s.Users[i].Name == name {
			return &s.Users[i]
		}
	}
	return nil
}

// FindNotification returns the notification with the given id, or nil.
func (s *Snapshot) FindNotification(id string) *Notification {
	for _, n := range s.Notifications {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// itemsTotal sums qty*price over a line item set.
func itemsTotal(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(it.Qty)))
	}
	return total
}

// sameDay reports whether two instants fall on the same calendar day in
// local time, the granularity day closures aggregate at.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
