package report

import (
	"errors"
	"fmt"

	"delivery-report-service/internal/timewindow"
)

var (
	ErrInvalidDateFormat = timewindow.ErrInvalidDateFormat
	ErrInvalidFilter     = errors.New("invalid report filter")
	ErrMerchantNotFound  = errors.New("merchant not found")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
