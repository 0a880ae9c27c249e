package usecases

import (
	"errors"
	"strings"

	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/pkg/crypto"
)

const (
	packageCodePrefix = "PKG-"
	// gateway amounts are in kobo
	minorUnitsPerMajor = 100
)

var generateRandomToken = crypto.GenerateRandomToken

// storeError passes domain outcomes through and wraps everything else as an
// infrastructure failure.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, domainErr := range []error{
		domainerrors.ErrNotFound,
		domainerrors.ErrDuplicateEmail,
		domainerrors.ErrDuplicateUsername,
		domainerrors.ErrAlreadyPaid,
		domainerrors.ErrPackageLocked,
		domainerrors.ErrForbidden,
		domainerrors.ErrInvalidInput,
	} {
		if errors.Is(err, domainErr) {
			return err
		}
	}
	return domainerrors.Infra(op, err)
}

func newPackageCode() (string, error) {
	suffix, err := generateRandomToken(4)
	if err != nil {
		return "", err
	}
	return packageCodePrefix + strings.ToUpper(suffix), nil
}

func toMinorUnits(amount int64) int64 {
	return amount * minorUnitsPerMajor
}
