package service

import "fmt"

type CheckoutErrorKind string

const (
	KindMissingData        CheckoutErrorKind = "missing_data"
	KindValidation         CheckoutErrorKind = "validation"
	KindDeclined           CheckoutErrorKind = "declined"
	KindIndeterminate      CheckoutErrorKind = "indeterminate"
	KindGatewayUnavailable CheckoutErrorKind = "gateway_unavailable"
	KindPersistenceFailure CheckoutErrorKind = "persistence_failure"
)

// CheckoutError is returned for every checkout that does not end with a
// stored order. TransactionID and AuthCode are set only when the card was
// charged, i.e. for KindPersistenceFailure.
type CheckoutError struct {
	Kind          CheckoutErrorKind
	Message       string
	Field         string
	TransactionID string
	AuthCode      string
	Err           error
}

func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("checkout %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("checkout %s: %s", e.Kind, e.Message)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// Charged reports whether funds were captured despite the failure.
func (e *CheckoutError) Charged() bool {
	return e.Kind == KindPersistenceFailure
}
