package auth

import "errors"

// Kind classifies an authentication or authorization failure.  Every gate
// reports its denials through the same Error type so the HTTP layer has one
// place that turns them into responses.
type Kind int

const (
	// KindInvalidCredential covers every access/refresh/magic-link
	// verification failure, including a refresh token that no longer matches
	// the stored value.  Clients never learn which check failed.
	KindInvalidCredential Kind = iota + 1
	// KindUnauthorizedRole means identity is known but permission is not.
	KindUnauthorizedRole
	// KindMissingIdentifier means a required resource id was absent.
	KindMissingIdentifier
	// KindIdentityContract means an authorization gate ran before the
	// session gate established identity.  It is a wiring bug.
	KindIdentityContract
	// KindUnexpected wraps storage or signing failures.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredential:
		return "invalid_credential"
	case KindUnauthorizedRole:
		return "unauthorized_role"
	case KindMissingIdentifier:
		return "missing_identifier"
	case KindIdentityContract:
		return "identity_contract_violation"
	case KindUnexpected:
		return "unexpected"
	}
	return "unknown"
}

// Error is the shared result type of the token, session and role layers.
// Message is safe to show to clients; Err carries the detail for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrInvalidToken)
// holds for every invalid-credential failure regardless of its cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidToken     = &Error{Kind: KindInvalidCredential, Message: "Invalid or expired token"}
	ErrUnauthorizedRole = &Error{Kind: KindUnauthorizedRole, Message: "Unauthorized access"}
	ErrEventIDRequired  = &Error{Kind: KindMissingIdentifier, Message: "Event ID is required"}
	ErrNoIdentity       = &Error{Kind: KindIdentityContract, Message: "Invalid or expired token"}
)

// Unexpected wraps err as a KindUnexpected failure.  A nil err yields nil.
func Unexpected(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindUnexpected, Message: "Internal server error", Err: err}
}

// KindOf reports the Kind carried by err, or KindUnexpected when err is not
// an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}
