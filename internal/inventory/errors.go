package inventory

import "errors"

var (
	// ErrReadOnly is returned by every mutating action once the session is
	// read-only.
	ErrReadOnly = errors.New("session is read-only")
	// ErrNotLoggedIn is returned by mutating actions before a login.
	ErrNotLoggedIn = errors.New("no operator is logged in")
	// ErrUnknownOperator is returned by Login for ids outside the verifier
	// table.
	ErrUnknownOperator = errors.New("unknown operator number")
	// ErrOperatorMismatch is returned by Login when another operator's
	// session holds data. Retry with LoginContinue or LoginReset.
	ErrOperatorMismatch = errors.New("a session by another operator is in progress")
	// ErrDuplicateFile is returned by Ingest for a file name already loaded.
	// Retry with replace set.
	ErrDuplicateFile = errors.New("file already loaded")
	// ErrDuplicateSerial is returned when a serial number or key is already
	// known to the session.
	ErrDuplicateSerial = errors.New("serial number or key already exists")
	// ErrDuplicateCustodian is returned for a custodian name already in use.
	ErrDuplicateCustodian = errors.New("custodian already exists")
	// ErrNoActiveCustodian is returned by actions that assign to the active
	// custodian when there is none.
	ErrNoActiveCustodian = errors.New("no active custodian")
	// ErrNotFound is returned when an item, custodian, list or area does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrUndoExpired is returned when there is nothing left to undo.
	ErrUndoExpired = errors.New("nothing to undo")
	// ErrEmptyInventory is returned by photo imports before any list is
	// loaded.
	ErrEmptyInventory = errors.New("inventory is empty")
	// ErrAreaClosed is returned when closing an area twice.
	ErrAreaClosed = errors.New("area is already closed")
	// ErrOrphanedArea is returned by DeleteList when custodians would lose
	// their area and no policy was given.
	ErrOrphanedArea = errors.New("deleting the list leaves custodians without an area")
	// ErrInvalidInput is returned for missing required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptySelection is returned by batch actions called without keys.
	ErrEmptySelection = errors.New("no items selected")
)
