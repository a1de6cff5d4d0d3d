package retail

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ItemInput is one requested sale line. Price overrides the catalog price
// when set; zero means "use the catalog price". The item name is always
// taken from the catalog at sale time.
type ItemInput struct {
	ProductID int64           `json:"product_id"`
	Qty       int64           `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// DeclaredTotals are the amounts a seller declares when closing the day.
type DeclaredTotals struct {
	Cash           decimal.Decimal `json:"cash"`
	Transfer       decimal.Decimal `json:"transfer"`
	OpenTime       string          `json:"open_time"`
	AdditionalInfo string          `json:"additional_info"`
}

// normalizeItems validates the requested lines against the catalog and
// resolves names and prices. No mutation happens until every line passed.
func (e *Engine) normalizeItems(inputs []ItemInput) ([]SaleItem, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyCart
	}
	items := make([]SaleItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Qty <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}
		p := e.snap.FindProduct(in.ProductID)
		if p == nil {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, in.ProductID)
		}
		price := in.Price
		if price.IsZero() {
			price = p.Price
		}
		items = append(items, SaleItem{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       in.Qty,
			Price:     price,
		})
	}
	return items, nil
}

// CreateSale registers a checkout. Inventory is deducted immediately; the
// sale is born closed for a privileged actor and registered otherwise.
// Sale flows never clamp stock, negative quantities stand for oversold
// inventory awaiting reconciliation.
func (e *Engine) CreateSale(actor Actor, businessID int64, inputs []ItemInput) (Sale, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snap.FindBusiness(businessID) == nil {
		return Sale{}, fmt.Errorf("%w: unknown business %d", ErrValidation, businessID)
	}
	items, err := e.normalizeItems(inputs)
	if err != nil {
		return Sale{}, err
	}

	status := StatusRegistered
	if e.flags.Privileged(actor.Role) {
		status = StatusClosed
	}

	next := e.snap.Clone()
	sale := &Sale{
		ID:         e.nextSaleID(),
		Type:       SaleTypeSale,
		Date:       time.Now(),
		BusinessID: businessID,
		Seller:     actor.Name,
		Items:      items,
		Total:      itemsTotal(items),
		Status:     status,
	}

	deltas := make(map[int64]int64, len(items))
	for _, it := range items {
		deltas[it.ProductID] -= it.Qty
	}
	next.applyDeltas(businessID, deltas)
	next.Sales = append([]*Sale{sale}, next.Sales...)
	e.appendLog(next, actor.Name, "sale_created",
		fmt.Sprintf("Venta registrada: $%s (%d productos)", sale.Total.StringFixed(2), len(items)))

	if err := e.commit(next); err != nil {
		return Sale{}, err
	}
	e.logger.Info("sale created",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("business_id", businessID),
		zap.String("seller", actor.Name),
		zap.String("status", string(status)),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	return e.saleCopy(sale), nil
}

// EditSale replaces the item set of a sale. The previous item set is
// reversed and the new one deducted in a single precomputed delta pass, so
// a second edit always unwinds the first edit's items, never the
// original's. Total is recomputed; status is untouched.
func (e *Engine) EditSale(actor Actor, saleID int64, inputs []ItemInput) (Sale, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.snap.FindSale(saleID)
	if cur == nil {
		return Sale{}, fmt.Errorf("%w: sale %d", ErrNotFound, saleID)
	}
	if cur.IsClosure() {
		return Sale{}, fmt.Errorf("%w: a day closure has no items to edit", ErrValidation)
	}
	if cur.Status != StatusRegistered && cur.Status != StatusClosed {
		return Sale{}, fmt.Errorf("%w: sale in status %q cannot be edited", ErrValidation, cur.Status)
	}
	if cur.Seller != actor.Name && !e.flags.CanExecuteDirectly(actor.Role, ActionEditSale) {
		return Sale{}, ErrPermissionDenied
	}
	items, err := e.normalizeItems(inputs)
	if err != nil {
		return Sale{}, err
	}

	// Full delta set first: restore current items, deduct new ones.
	deltas := make(map[int64]int64)
	for _, it := range cur.Items {
		deltas[it.ProductID] += it.Qty
	}
	for _, it := range items {
		deltas[it.ProductID] -= it.Qty
	}

	next := e.snap.Clone()
	sale := next.FindSale(saleID)
	next.applyDeltas(sale.BusinessID, deltas)
	sale.Items = items
	sale.Total = itemsTotal(items)
	sale.Date = time.Now()
	e.appendLog(next, actor.Name, "sale_edited",
		fmt.Sprintf("Venta #%d editada: $%s", saleID, sale.Total.StringFixed(2)))

	if err := e.commit(next); err != nil {
		return Sale{}, err
	}
	e.logger.Info("sale edited",
		zap.Int64("sale_id", saleID),
		zap.String("actor", actor.Name),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	return e.saleCopy(sale), nil
}

// CloseDay aggregates the seller's registered sales of today at one
// business into a daily_closure composite carrying the reconciliation
// figures. A privileged actor closes directly; otherwise the composite and
// its sales go pending and a closure_request notification is raised. The
// fan-out is a status stamp only — inventory was already deducted when
// each sale was created.
func (e *Engine) CloseDay(actor Actor, businessID int64, seller string, declared DeclaredTotals) (Sale, *Notification, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snap.FindBusiness(businessID) == nil {
		return Sale{}, nil, fmt.Errorf("%w: unknown business %d", ErrValidation, businessID)
	}
	if seller == "" {
		seller = actor.Name
	}
	now := time.Now()

	expected := decimal.Zero
	count := 0
	for _, s := range e.snap.Sales {
		if s.Status == StatusRegistered && s.Seller == seller &&
			s.BusinessID == businessID && sameDay(s.Date, now) {
			expected = expected.Add(s.Total)
			count++
		}
	}
	if count == 0 {
		return Sale{}, nil, ErrNothingToClose
	}

	status := StatusPending
	if e.flags.CanExecuteDirectly(actor.Role, ActionCloseDay) {
		status = StatusClosed
	}
	diff := ComputeDiff(expected, declared.Cash, declared.Transfer)

	next := e.snap.Clone()
	closure := &Sale{
		ID:               e.nextSaleID(),
		Type:             SaleTypeDailyClosure,
		Date:             now,
		BusinessID:       businessID,
		Seller:           seller,
		Total:            expected,
		Status:           status,
		OpenTime:         declared.OpenTime,
		CloseTime:        now.Format("15:04"),
		CashAmount:       declared.Cash,
		TransferAmount:   declared.Transfer,
		CashFaltante:     diff.CashFaltante,
		CashSobrante:     diff.CashSobrante,
		TransferFaltante: diff.TransferFaltante,
		TransferSobrante: diff.TransferSobrante,
		AdditionalInfo:   declared.AdditionalInfo,
		SalesCount:       count,
	}
	for _, s := range next.Sales {
		if s.Status == StatusRegistered && s.Seller == seller &&
			s.BusinessID == businessID && sameDay(s.Date, now) {
			s.Status = status
			s.ClosureID = closure.ID
		}
	}
	next.Sales = append([]*Sale{closure}, next.Sales...)

	var notif *Notification
	if status == StatusPending {
		notif = newNotification(
			NotificationClosureRequest,
			closure.ID,
			businessID,
			fmt.Sprintf("Cierre de Día: %s", seller),
			fmt.Sprintf("$%s (%d ventas)", expected.StringFixed(2), count),
			Command{Kind: CommandApplyClosure, SaleID: closure.ID},
		)
		next.Notifications = append([]*Notification{notif}, next.Notifications...)
	}
	e.appendLog(next, actor.Name, "day_closed",
		fmt.Sprintf("Cierre de día: $%s, %d ventas (%s)", expected.StringFixed(2), count, status))

	if err := e.commit(next); err != nil {
		return Sale{}, nil, err
	}
	e.logger.Info("day closure recorded",
		zap.Int64("closure_id", closure.ID),
		zap.Int64("business_id", businessID),
		zap.String("seller", seller),
		zap.Int("sales", count),
		zap.String("status", string(status)),
	)
	if notif != nil {
		cp := *notif
		return e.saleCopy(closure), &cp, nil
	}
	return e.saleCopy(closure), nil, nil
}

// DeleteSale removes a sale and restores whatever inventory impact is
// currently attributed to it, regardless of status. An actor who may not
// delete directly gets a delete_request notification instead (the
// PermissionDenied-to-notification conversion is the product behavior, not
// an error path). force bypasses the policy check and is used when an
// approved request executes its command.
func (e *Engine) DeleteSale(actor Actor, saleID int64, force bool) (*Notification, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.snap.FindSale(saleID)
	if cur == nil {
		return nil, fmt.Errorf("%w: sale %d", ErrNotFound, saleID)
	}

	if !force {
		direct := e.flags.CanExecuteDirectly(actor.Role, ActionDeleteSale) ||
			(cur.Seller == actor.Name && cur.Status == StatusRegistered)
		if !direct {
			// One outstanding request per (type, refId): re-requesting
			// while unresolved returns the existing notification untouched.
			if existing := e.snap.pendingNotification(NotificationDeleteRequest, saleID); existing != nil {
				cp := *existing
				return &cp, nil
			}
			next := e.snap.Clone()
			notif := newNotification(
				NotificationDeleteRequest,
				saleID,
				cur.BusinessID,
				fmt.Sprintf("Solicitud de Eliminación: %s", actor.Name),
				fmt.Sprintf("Venta de $%s por %s. Requiere devolución de stock.", cur.Total.StringFixed(2), cur.Seller),
				Command{Kind: CommandApplyDeletion, SaleID: saleID},
			)
			next.Notifications = append([]*Notification{notif}, next.Notifications...)
			e.appendLog(next, actor.Name, "delete_requested",
				fmt.Sprintf("Solicitud de eliminación de venta #%d", saleID))
			if err := e.commit(next); err != nil {
				return nil, err
			}
			e.logger.Info("delete request raised",
				zap.Int64("sale_id", saleID),
				zap.String("actor", actor.Name),
			)
			cp := *notif
			return &cp, nil
		}
	}

	next := e.snap.Clone()
	performDelete(next, next.FindSale(saleID))
	e.appendLog(next, actor.Name, "sale_deleted",
		fmt.Sprintf("Venta #%d eliminada. Stock restaurado.", saleID))

	if err := e.commit(next); err != nil {
		return nil, err
	}
	e.logger.Info("sale deleted",
		zap.Int64("sale_id", saleID),
		zap.String("actor", actor.Name),
		zap.Bool("force", force),
	)
	return nil, nil
}

// performDelete restores the sale's current items to inventory, removes
// the sale and purges any still-pending delete_request notifications that
// reference it. Composites carry no items, so deleting one restores
// nothing.
func performDelete(s *Snapshot, sale *Sale) {
	deltas := make(map[int64]int64, len(sale.Items))
	for _, it := range sale.Items {
		deltas[it.ProductID] += it.Qty
	}
	s.applyDeltas(sale.BusinessID, deltas)

	kept := s.Sales[:0]
	for _, sl := range s.Sales {
		if sl.ID != sale.ID {
			kept = append(kept, sl)
		}
	}
	s.Sales = kept

	keptN := s.Notifications[:0]
	for _, n := range s.Notifications {
		if n.Type == NotificationDeleteRequest && n.RefID == sale.ID && n.Status == NotificationPending {
			continue
		}
		keptN = append(keptN, n)
	}
	s.Notifications = keptN
}

// RecordWaste writes off lost or spoiled stock (merma). Unlike sale flows
// the waste flow clamps at zero: writing off more than is on hand leaves
// the stock at zero rather than negative.
func (e *Engine) RecordWaste(actor Actor, businessID, productID, quantity int64) (WasteRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snap.FindBusiness(businessID) == nil {
		return WasteRecord{}, fmt.Errorf("%w: unknown business %d", ErrValidation, businessID)
	}
	p := e.snap.FindProduct(productID)
	if p == nil {
		return WasteRecord{}, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if quantity <= 0 {
		return WasteRecord{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	next := e.snap.Clone()
	if next.Stock(businessID, productID) < quantity {
		next.SetStock(businessID, productID, 0)
	} else {
		next.AdjustStock(businessID, productID, -quantity)
	}
	rec := WasteRecord{
		ID:         newID(),
		Date:       time.Now(),
		BusinessID: businessID,
		ProductID:  productID,
		Quantity:   quantity,
		User:       actor.Name,
	}
	next.Waste = append(next.Waste, rec)
	e.appendLog(next, actor.Name, "waste_recorded",
		fmt.Sprintf("Merma registrada: %dx %s", quantity, p.Name))

	if err := e.commit(next); err != nil {
		return WasteRecord{}, err
	}
	e.logger.Info("waste recorded",
		zap.Int64("business_id", businessID),
		zap.Int64("product_id", productID),
		zap.Int64("quantity", quantity),
		zap.String("user", actor.Name),
	)
	return rec, nil
}

// saleCopy returns a detached copy safe to hand to callers.
func (e *Engine) saleCopy(s *Sale) Sale {
	cp := *s
	cp.Items = append([]SaleItem(nil), s.Items...)
	return cp
}
