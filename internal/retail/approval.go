package retail

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Decision is the outcome a resolver picks for a pending notification.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func newID() string { return uuid.NewString() }

func newNotification(typ NotificationType, refID, businessID int64, title, message string, cmd Command) *Notification {
	return &Notification{
		ID:         newID(),
		Type:       typ,
		RefID:      refID,
		BusinessID: businessID,
		Title:      title,
		Message:    message,
		Status:     NotificationPending,
		Date:       time.Now(),
		Command:    cmd,
	}
}

// pendingNotification returns the unresolved notification for (type,
// refId), or nil. At most one may be outstanding at a time.
func (s *Snapshot) pendingNotification(typ NotificationType, refID int64) *Notification {
	for _, n := range s.Notifications {
		if n.Type == typ && n.RefID == refID && n.Status == NotificationPending {
			return n
		}
	}
	return nil
}

// ResolveNotification settles a pending request. Approval executes the
// command the notification has carried since it was created; rejection
// only records the outcome (a rejected closure leaves the composite and
// its sales in the terminal rejected state, retained for the UI to
// surface). A notification is never revisited once resolved.
func (e *Engine) ResolveNotification(actor Actor, id string, decision Decision) error {
	if decision != DecisionApprove && decision != DecisionReject {
		return fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.snap.FindNotification(id)
	if n == nil {
		return fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	if n.Status != NotificationPending {
		return ErrAlreadyResolved
	}
	if !e.flags.CanExecuteDirectly(actor.Role, ActionResolve) {
		return ErrPermissionDenied
	}
	// Approving a deletion runs the forced delete; the resolver needs the
	// same privilege a direct delete would.
	if decision == DecisionApprove && n.Command.Kind == CommandApplyDeletion &&
		!e.flags.CanExecuteDirectly(actor.Role, ActionDeleteSale) {
		return ErrPermissionDenied
	}
	// The referenced sale may have been deleted independently.
	if e.snap.FindSale(n.Command.SaleID) == nil {
		return fmt.Errorf("%w: sale %d referenced by notification", ErrNotFound, n.Command.SaleID)
	}

	next := e.snap.Clone()
	nc := next.FindNotification(id)
	sale := next.FindSale(n.Command.SaleID)

	nc.ResolvedBy = actor.Name
	if decision == DecisionReject {
		nc.Status = NotificationRejected
		if nc.Command.Kind == CommandApplyClosure {
			markClosure(next, sale, StatusRejected, "")
		}
		e.appendLog(next, actor.Name, "notification_rejected",
			fmt.Sprintf("Notificación rechazada: %s", nc.Title))
	} else {
		nc.Status = NotificationApproved
		switch nc.Command.Kind {
		case CommandApplyClosure:
			markClosure(next, sale, StatusClosed, actor.Name)
		case CommandApplyDeletion:
			performDelete(next, sale)
		}
		e.appendLog(next, actor.Name, "notification_approved",
			fmt.Sprintf("Notificación aprobada: %s", nc.Title))
	}

	if err := e.commit(next); err != nil {
		return err
	}
	e.logger.Info("notification resolved",
		zap.String("notification_id", id),
		zap.String("decision", string(decision)),
		zap.String("resolver", actor.Name),
	)
	return nil
}

// markClosure stamps a closure composite and every sale grouped under it
// with the resolved status. Pure bookkeeping: inventory was settled when
// the sales were created.
func markClosure(s *Snapshot, closure *Sale, status SaleStatus, approver string) {
	closure.Status = status
	if approver != "" {
		closure.Approver = approver
	}
	for _, sl := range s.Sales {
		if sl.ClosureID == closure.ID {
			sl.Status = status
		}
	}
}
