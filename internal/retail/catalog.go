package retail

import (
	"fmt"

	"go.uber.org/zap"
)

// Catalog primitives. These never fail: an absent inventory record reads
// as zero and is created on first adjustment. Quantities are deliberately
// allowed to go negative; only the waste flow opts into a zero floor.

// Stock returns the quantity of a product at a business, zero if no
// record exists.
func (s *Snapshot) Stock(businessID, productID int64) int64 {
	for i := range s.Inventory {
		rec := &s.Inventory[i]
		if rec.BusinessID == businessID && rec.ProductID == productID {
			return rec.Quantity
		}
	}
	return 0
}

// AdjustStock adds delta to the quantity of a product at a business,
// creating the record if absent so no (business, product) pair is ever
// duplicated.
func (s *Snapshot) AdjustStock(businessID, productID, delta int64) {
	for i := range s.Inventory {
		rec := &s.Inventory[i]
		if rec.BusinessID == businessID && rec.ProductID == productID {
			rec.Quantity += delta
			return
		}
	}
	s.Inventory = append(s.Inventory, InventoryRecord{
		BusinessID: businessID,
		ProductID:  productID,
		Quantity:   delta,
	})
}

// SetStock sets the absolute quantity of a product at a business. Used by
// manual inventory edits and by the waste flow's zero floor.
func (s *Snapshot) SetStock(businessID, productID, quantity int64) {
	for i := range s.Inventory {
		rec := &s.Inventory[i]
		if rec.BusinessID == businessID && rec.ProductID == productID {
			rec.Quantity = quantity
			return
		}
	}
	s.Inventory = append(s.Inventory, InventoryRecord{
		BusinessID: businessID,
		ProductID:  productID,
		Quantity:   quantity,
	})
}

// AddProduct appends a catalog entry. Gated by the inventory-edit policy.
func (e *Engine) AddProduct(actor Actor, p Product) (Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.flags.CanExecuteDirectly(actor.Role, ActionEditInventory) {
		return Product{}, ErrPermissionDenied
	}
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}

	next := e.snap.Clone()
	p.ID = 1
	for i := range next.Products {
		if next.Products[i].ID >= p.ID {
			p.ID = next.Products[i].ID + 1
		}
	}
	next.Products = append(next.Products, p)
	e.appendLog(next, actor.Name, "product_added", fmt.Sprintf("Producto creado: %s", p.Name))

	if err := e.commit(next); err != nil {
		return Product{}, err
	}
	e.logger.Info("product added", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// UpdateProduct replaces the mutable fields of a catalog entry. Sale items
// keep the name and price captured when they were sold.
func (e *Engine) UpdateProduct(actor Actor, id int64, p Product) (Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.flags.CanExecuteDirectly(actor.Role, ActionEditInventory) {
		return Product{}, ErrPermissionDenied
	}
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	if e.snap.FindProduct(id) == nil {
		return Product{}, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}

	next := e.snap.Clone()
	target := next.FindProduct(id)
	target.Name = p.Name
	target.Alias = p.Alias
	target.Category = p.Category
	target.Cost = p.Cost
	target.Price = p.Price
	e.appendLog(next, actor.Name, "product_updated", fmt.Sprintf("Producto actualizado: %s", p.Name))

	if err := e.commit(next); err != nil {
		return Product{}, err
	}
	e.logger.Info("product updated", zap.Int64("product_id", id), zap.String("name", p.Name))
	return *target, nil
}

// SetStockLevel is the manual absolute stock edit.
func (e *Engine) SetStockLevel(actor Actor, businessID, productID, quantity int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.flags.CanExecuteDirectly(actor.Role, ActionEditInventory) {
		return ErrPermissionDenied
	}
	if e.snap.FindBusiness(businessID) == nil {
		return fmt.Errorf("%w: unknown business %d", ErrValidation, businessID)
	}
	p := e.snap.FindProduct(productID)
	if p == nil {
		return fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}

	next := e.snap.Clone()
	next.SetStock(businessID, productID, quantity)
	e.appendLog(next, actor.Name, "stock_set",
		fmt.Sprintf("Stock de %s ajustado a %d", p.Name, quantity))

	if err := e.commit(next); err != nil {
		return err
	}
	e.logger.Info("stock set",
		zap.Int64("business_id", businessID),
		zap.Int64("product_id", productID),
		zap.Int64("quantity", quantity),
	)
	return nil
}

func validateProduct(p Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.Cost.IsNegative() || p.Price.IsNegative() {
		return fmt.Errorf("%w: cost and price must not be negative", ErrValidation)
	}
	return nil
}

// applyDeltas applies a precomputed per-product delta map for one
// business. Ledger mutations build the full map before touching any
// record, so inventory is never left partially adjusted.
func (s *Snapshot) applyDeltas(businessID int64, deltas map[int64]int64) {
	for productID, delta := range deltas {
		if delta != 0 {
			s.AdjustStock(businessID, productID, delta)
		}
	}
}
