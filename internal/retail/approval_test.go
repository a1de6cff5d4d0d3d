package retail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveClosure_FanOutWithoutInventoryEffect(t *testing.T) {
	e, _ := newTestEngine(t, PolicyFlags{})
	coffee, bread := seedCatalog(t, e)

	sale, err := e.CreateSale(seller, 2, []ItemInput{
		{ProductID: coffee.ID, Qty: 3},
		{ProductID: bread.ID, Qty: 1},
	})
	require.NoError(t, err)
	closure, notif, err := e.CloseDay(seller, 2, "", DeclaredTotals{Cash: dec(35)})
	require.NoError(t, err)
	require.NotNil(t, notif)

	require.NoError(t, e.ResolveNotification(owner, notif.ID, DecisionApprove))

	got, err := e.Sale(closure.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, got.Status)
	assert.Equal(t, owner.Name, got.Approver)

	under, err := e.Sale(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, under.Status)

	// Approval is bookkeeping only; stock was settled at creation.
	assert.Equal(t, int64(7), e.Stock(2, coffee.ID))
	assert.Equal(t, int64(7), e.Stock(2, bread.ID))

	resolved := e.Notifications()[0]
	assert.Equal(t, NotificationApproved, resolved.Status)
	assert.Equal(t, owner.Name, resolved.ResolvedBy)
}

func TestRejectClosure_TerminalRejectedState(t *testing.T) {
	e, _ := newTestEngine(t, PolicyFlags{})
	coffee, _ := seedCatalog(t, e)

	sale, err := e.CreateSale(seller, 2, []ItemInput{{ProductID: coffee.ID, Qty: 1}})
	require.NoError(t, err)
	closure, notif, err := e.CloseDay(seller, 2, "", DeclaredTotals{Cash: dec(10)})
	require.NoError(t, err)

	require.NoError(t, e.ResolveNotification(owner, notif.ID, DecisionReject))

	got, err := e.Sale(closure.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status, "rejected closures are retained, not deleted")
	under, err := e.Sale(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, under.Status)
}

func TestApproveDeletion_RunsForcedDelete(t *testing.T) {
	e, _ := newTestEngine(t, PolicyFlags{})
	coffee, _ := seedCatalog(t, e)

	sale, err := e.CreateSale(owner, 2, []ItemInput{{ProductID: coffee.ID, Qty: 2}})
	require.NoError(t, err)
	notif, err := e.DeleteSale(seller, sale.ID, false)
	require.NoError(t, err)
	require.NotNil(t, notif)

	require.NoError(t, e.ResolveNotification(owner, notif.ID, DecisionApprove))

	_, err = e.Sale(sale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(10), e.Stock(2, coffee.ID))

	// The resolved notification survives as an audit record.
	require.Len(t, e.Notifications(), 1)
	assert.Equal(t, NotificationApproved, e.Notifications()[0].Status)
}

func TestResolve_IdempotentAfterFirstResolution(t *testing.T) {
	e, _ := newTestEngine(t, PolicyFlags{})
	coffee, _ := seedCatalog(t, e)

	_, err := e.CreateSale(seller, 2, []ItemInput{{ProductID: coffee.ID, Qty: 1}})
	require.NoError(t, err)
	_, notif, err := e.CloseDay(seller, 2, "", DeclaredTotals{Cash: dec(10)})
	require.NoError(t, err)

	require.NoError(t, e.ResolveNotification(owner, notif.ID, DecisionApprove))
	before := e.Sales(0)

	err = e.ResolveNotification(owner, notif.ID, DecisionReject)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Equal(t, before, e.Sales(0), "second resolution must have no effect")
}

func TestResolve_NotFoundCases(t *testing.T) {
	e, _ := newTestEngine(t, PolicyFlags{})
	coffee, _ := seedCatalog(t, e)

	err := e.ResolveNotification(owner, "missing", DecisionApprove)
	assert.ErrorIs(t, err, ErrNotFound)

	// The referenced sale can be deleted independently of the request.
	sale, err := e.CreateSale(owner, 2, []ItemInput{{ProductID: coffee.ID, Qty: 1}})
	require.NoError(t, err)
	_, err = e.DeleteSale(seller, sale.ID, false)
	require.NoError(t, err)

	// Owner deletes directly; the pending request is purged with the sale,
	// so resolving it afterwards reports NotFound.
	notifs := e.Notifications()
	require.Len(t, notifs, 1)
	_, err = e.DeleteSale(owner, sale.ID, false)
	require.NoError(t, err)
	err = e.ResolveNotification(owner, notifs[0].ID, DecisionApprove)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_Permissions(t *testing.T) {
	e, _ := newTestEngine(t, PolicyFlags{})
	coffee, _ := seedCatalog(t, e)

	_, err := e.CreateSale(seller, 2, []ItemInput{{ProductID: coffee.ID, Qty: 1}})
	require.NoError(t, err)
	_, notif, err := e.CloseDay(seller, 2, "", DeclaredTotals{Cash: dec(10)})
	require.NoError(t, err)

	err = e.ResolveNotification(seller, notif.ID, DecisionApprove)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Admin may settle closures.
	assert.NoError(t, e.ResolveNotification(admin, notif.ID, DecisionApprove))
}

func TestResolve_AdminDeletionApprovalNeedsFlag(t *testing.T) {
	e, _ := newTestEngine(t, PolicyFlags{})
	coffee, _ := seedCatalog(t, e)

	sale, err := e.CreateSale(owner, 2, []ItemInput{{ProductID: coffee.ID, Qty: 1}})
	require.NoError(t, err)
	notif, err := e.DeleteSale(seller, sale.ID, false)
	require.NoError(t, err)

	err = e.ResolveNotification(admin, notif.ID, DecisionApprove)
	assert.ErrorIs(t, err, ErrPermissionDenied,
		"approving a deletion is a deletion; the admin flag gates it")

	// Rejection carries no side effect, so the admin may do it.
	assert.NoError(t, e.ResolveNotification(admin, notif.ID, DecisionReject))
}

func TestResolve_InvalidDecision(t *testing.T) {
	e, _ := newTestEngine(t, PolicyFlags{})
	err := e.ResolveNotification(owner, "whatever", Decision("maybe"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteRequest_Deduplicated(t *testing.T) {
	e, _ := newTestEngine(t, PolicyFlags{})
	coffee, _ := seedCatalog(t, e)

	sale, err := e.CreateSale(owner, 2, []ItemInput{{ProductID: coffee.ID, Qty: 1}})
	require.NoError(t, err)

	first, err := e.DeleteSale(seller, sale.ID, false)
	require.NoError(t, err)
	second, err := e.DeleteSale(seller, sale.ID, false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-requesting returns the outstanding notification")
	assert.Len(t, e.Notifications(), 1)

	// Once resolved, a fresh request may be raised again.
	require.NoError(t, e.ResolveNotification(owner, first.ID, DecisionReject))
	third, err := e.DeleteSale(seller, sale.ID, false)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Len(t, e.Notifications(), 2)
}
