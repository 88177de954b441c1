package ec

// ErrorKind identifies a kind of error. It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrUnsupportedCurve is returned when an operation does not apply to
	// the curve or curve family of its key.
	ErrUnsupportedCurve = ErrorKind("ErrUnsupportedCurve")

	// ErrInvalidKeyLength is returned when key material does not have a
	// length accepted for its curve.
	ErrInvalidKeyLength = ErrorKind("ErrInvalidKeyLength")

	// ErrInvalidPrivateKey is returned when a private scalar is zero or not
	// below the group order.
	ErrInvalidPrivateKey = ErrorKind("ErrInvalidPrivateKey")

	// ErrInvalidPublicKey is returned when a public key cannot be decoded or
	// does not lie on its curve.
	ErrInvalidPublicKey = ErrorKind("ErrInvalidPublicKey")

	// ErrBufferTooSmall is returned when a destination buffer cannot hold
	// the output.
	ErrBufferTooSmall = ErrorKind("ErrBufferTooSmall")

	// ErrUnsupportedHash is returned when a digest algorithm or size cannot
	// be used with the requested operation.
	ErrUnsupportedHash = ErrorKind("ErrUnsupportedHash")

	// ErrInvalidNonce is returned when a caller-provided nonce is missing or
	// out of range.
	ErrInvalidNonce = ErrorKind("ErrInvalidNonce")

	// ErrNonceRejected is returned when a caller-provided nonce produced a
	// degenerate signature and cannot be retried.
	ErrNonceRejected = ErrorKind("ErrNonceRejected")

	// ErrRetryExhausted is returned when the signing loop hit its attempt
	// cap without producing a valid signature.
	ErrRetryExhausted = ErrorKind("ErrRetryExhausted")

	// ErrInvalidParameter is returned for any other malformed argument.
	ErrInvalidParameter = ErrorKind("ErrInvalidParameter")

	// ErrArenaReleased is returned when a secret scope is used after it has
	// been wiped.
	ErrArenaReleased = ErrorKind("ErrArenaReleased")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to elliptic curve operations. It has
// full support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}

// NewError creates an Error of the given kind. The engines in sibling
// packages use it so every error they surface carries one of the kinds
// above.
func NewError(kind ErrorKind, desc string) Error {
	return makeError(kind, desc)
}
