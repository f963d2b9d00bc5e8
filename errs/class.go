package errs

// Class names an error family raised by exchange adapters. Callers branch on
// classes with IsClass instead of matching message text.
type Class string

const (
	ClassExchange             Class = "ExchangeError"
	ClassAuthentication       Class = "AuthenticationError"
	ClassPermissionDenied     Class = "PermissionDenied"
	ClassAccountSuspended     Class = "AccountSuspended"
	ClassArgumentsRequired    Class = "ArgumentsRequired"
	ClassBadRequest           Class = "BadRequest"
	ClassBadSymbol            Class = "BadSymbol"
	ClassInvalidAddress       Class = "InvalidAddress"
	ClassInsufficientFunds    Class = "InsufficientFunds"
	ClassInvalidOrder         Class = "InvalidOrder"
	ClassOrderNotFound        Class = "OrderNotFound"
	ClassNotSupported         Class = "NotSupported"
	ClassNetwork              Class = "NetworkError"
	ClassRateLimitExceeded    Class = "RateLimitExceeded"
	ClassInvalidNonce         Class = "InvalidNonce"
	ClassExchangeNotAvailable Class = "ExchangeNotAvailable"
	ClassOnMaintenance        Class = "OnMaintenance"
)

// parents encodes the taxonomy tree; roots map to the empty class.
var parents = map[Class]Class{
	ClassExchange:             "",
	ClassAuthentication:       ClassExchange,
	ClassPermissionDenied:     ClassAuthentication,
	ClassAccountSuspended:     ClassPermissionDenied,
	ClassArgumentsRequired:    ClassExchange,
	ClassBadRequest:           ClassExchange,
	ClassBadSymbol:            ClassBadRequest,
	ClassInvalidAddress:       ClassExchange,
	ClassInsufficientFunds:    ClassExchange,
	ClassInvalidOrder:         ClassExchange,
	ClassOrderNotFound:        ClassInvalidOrder,
	ClassNotSupported:         ClassExchange,
	ClassNetwork:              "",
	ClassRateLimitExceeded:    ClassNetwork,
	ClassInvalidNonce:         ClassNetwork,
	ClassExchangeNotAvailable: ClassNetwork,
	ClassOnMaintenance:        ClassExchangeNotAvailable,
}

// Known reports whether c is part of the taxonomy.
func (c Class) Known() bool {
	_, ok := parents[c]
	return ok
}

// Parent returns the direct parent class, or the empty class for roots.
func (c Class) Parent() Class {
	return parents[c]
}

// Is reports whether c equals target or descends from it.
func (c Class) Is(target Class) bool {
	for cur := c; cur != ""; cur = parents[cur] {
		if cur == target {
			return true
		}
	}
	return false
}

// Retryable reports whether the failure is transient transport trouble.
func (c Class) Retryable() bool {
	return c.Is(ClassNetwork) && c != ClassInvalidNonce
}

func (c Class) code() Code {
	switch {
	case c.Is(ClassRateLimitExceeded):
		return CodeRateLimited
	case c.Is(ClassExchangeNotAvailable):
		return CodeUnavailable
	case c.Is(ClassNetwork):
		return CodeNetwork
	case c.Is(ClassAuthentication):
		return CodeAuth
	case c.Is(ClassOrderNotFound):
		return CodeNotFound
	case c.Is(ClassBadRequest), c.Is(ClassInvalidOrder), c.Is(ClassArgumentsRequired),
		c.Is(ClassInvalidAddress), c.Is(ClassInsufficientFunds):
		return CodeInvalid
	default:
		return CodeExchange
	}
}

func (c Class) canonical() CanonicalCode {
	switch c {
	case ClassOrderNotFound:
		return CanonicalOrderNotFound
	case ClassInsufficientFunds:
		return CanonicalInsufficientBalance
	case ClassBadSymbol:
		return CanonicalInvalidSymbol
	case ClassRateLimitExceeded:
		return CanonicalRateLimited
	case ClassOnMaintenance:
		return CanonicalMaintenance
	case ClassNotSupported:
		return CanonicalCapabilityMissing
	default:
		return CanonicalUnknown
	}
}
