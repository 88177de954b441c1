package der

import (
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

// ErrorKind identifies the first DER rule a signature violates. Parse wraps
// it in an ec.Error, so errors.Is works against these constants.
type ErrorKind string

// These constants are used to identify a specific parse failure.
const (
	// ErrSigTooShort is returned when the input cannot hold the smallest
	// possible encoding.
	ErrSigTooShort = ErrorKind("ErrSigTooShort")

	// ErrSigInvalidSeqID is returned when the first byte is not the ASN.1
	// SEQUENCE identifier.
	ErrSigInvalidSeqID = ErrorKind("ErrSigInvalidSeqID")

	// ErrSigIndefiniteLen is returned for the BER indefinite length form.
	ErrSigIndefiniteLen = ErrorKind("ErrSigIndefiniteLen")

	// ErrSigNonMinimalLen is returned when a length uses more bytes than
	// needed.
	ErrSigNonMinimalLen = ErrorKind("ErrSigNonMinimalLen")

	// ErrSigInvalidDataLen is returned when a length runs past the end of
	// its enclosing data.
	ErrSigInvalidDataLen = ErrorKind("ErrSigInvalidDataLen")

	// ErrSigInvalidIntID is returned when R or S is not tagged INTEGER.
	ErrSigInvalidIntID = ErrorKind("ErrSigInvalidIntID")

	// ErrSigZeroIntLen is returned for an INTEGER with no content.
	ErrSigZeroIntLen = ErrorKind("ErrSigZeroIntLen")

	// ErrSigNegativeInt is returned when the top bit of R or S is set.
	ErrSigNegativeInt = ErrorKind("ErrSigNegativeInt")

	// ErrSigTooMuchPadding is returned when R or S carries a leading zero
	// byte that is not required.
	ErrSigTooMuchPadding = ErrorKind("ErrSigTooMuchPadding")

	// ErrSigIntTooBig is returned when R or S exceeds the caller's size
	// limit.
	ErrSigIntTooBig = ErrorKind("ErrSigIntTooBig")

	// ErrSigTrailingData is returned when bytes follow S inside the
	// SEQUENCE or follow the SEQUENCE itself.
	ErrSigTrailingData = ErrorKind("ErrSigTrailingData")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

func signatureError(kind ErrorKind, desc string) error {
	return ec.Error{Err: kind, Description: desc}
}
