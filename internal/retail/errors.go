package retail

import "errors"

// ErrNotFound is returned when a sale, notification or product id does not
// resolve. The operation aborts with no partial effect.
var ErrNotFound = errors.New("not found")

// ErrValidation covers malformed input: bad quantities or prices, unknown
// business, wrong sale kind for the operation. Rejected before any mutation.
var ErrValidation = errors.New("validation failed")

// ErrEmptyCart is returned when a sale is created or edited with no items.
var ErrEmptyCart = errors.New("empty cart")

// ErrNothingToClose is returned by CloseDay when the seller has no
// registered sales today at the given business.
var ErrNothingToClose = errors.New("no registered sales to close")

// ErrPermissionDenied is surfaced only where the policy layer does not
// convert the denial into a notification (edits, catalog mutations,
// resolving without privilege).
var ErrPermissionDenied = errors.New("permission denied")

// ErrAlreadyResolved is returned when resolving a notification whose
// status is already terminal. Nothing changes.
var ErrAlreadyResolved = errors.New("notification already resolved")

// ErrPersistence means the snapshot save failed. The in-memory state was
// not changed: mutations commit only after a successful save.
var ErrPersistence = errors.New("snapshot save failed")
