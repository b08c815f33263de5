package invoice

import "errors"

var (
	// ErrInvoiceNotFound is returned when no invoice has the requested id.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrInvalidStatus is returned when a stored status other than Draft, Pending or Paid is supplied.
	ErrInvalidStatus = errors.New("invalid invoice status")

	// ErrInvalidQuery is returned for unknown sort fields or orders.
	ErrInvalidQuery = errors.New("invalid list query")
)
