package domain

import "errors"

// Ошибки бизнес-логики, сравнивать через errors.Is
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrDuplicatePayment    = errors.New("payment already applied")
	ErrUnknownPackage      = errors.New("unknown credit package")
	ErrAmountMismatch      = errors.New("payment amount mismatch")
	ErrCurrencyMismatch    = errors.New("payment currency mismatch")
	ErrPayerMismatch       = errors.New("payload user does not match actual payer")
	ErrGenerationNotFound  = errors.New("generation task not found")
	ErrAlreadyTerminal     = errors.New("generation already in terminal status")
	ErrNotAdmin            = errors.New("admin permissions required")
	ErrAdminDisabled       = errors.New("admin operations disabled in this environment")
	ErrInvalidGrantAmount  = errors.New("grant amount out of allowed range")
)

// BusinessError ошибка бизнес-логики, которая уже залогирована в UseCase
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func WrapBusinessError(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Err: err}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}
