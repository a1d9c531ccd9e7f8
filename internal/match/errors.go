package match

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrPhaseTransitionIgnored = errors.New("phase transition ignored")
	ErrConversionNotAllowed   = errors.New("no unconverted try in the conversion window")
	ErrInvalidKind            = errors.New("invalid kind")
)

type InvalidSubstitutionError struct {
	Reason string
}

func (e *InvalidSubstitutionError) Error() string {
	return fmt.Sprintf("invalid substitution: %s", e.Reason)
}

type CardRejectedError struct {
	Reason string
}

func (e *CardRejectedError) Error() string {
	return fmt.Sprintf("card rejected: %s", e.Reason)
}

// IsRejection: ошибка правил матча, а не сбой.
func IsRejection(err error) bool {
	var sub *InvalidSubstitutionError
	var card *CardRejectedError
	return errors.As(err, &sub) || errors.As(err, &card) ||
		errors.Is(err, ErrPhaseTransitionIgnored) || errors.Is(err, ErrConversionNotAllowed)
}
