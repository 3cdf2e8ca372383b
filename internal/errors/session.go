package errors

var (
	ErrSessionNotFound = &DomainError{
		Code:    "SESSION_NOT_FOUND",
		Message: "payment session not found",
		Status:  404,
	}
	ErrSessionExpired = &DomainError{
		Code:    "SESSION_EXPIRED",
		Message: "payment session has expired",
		Status:  410,
	}
	ErrSessionAlreadyUsed = &DomainError{
		Code:    "SESSION_ALREADY_USED",
		Message: "payment session has already been scanned",
		Status:  409,
	}
	ErrSessionNotPayable = &DomainError{
		Code:    "SESSION_NOT_PAYABLE",
		Message: "payment session is not in a payable state",
		Status:  400,
	}
	ErrInvalidTransition = &DomainError{
		Code:    "INVALID_TRANSITION",
		Message: "payment session was claimed by a concurrent request",
		Status:  409,
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
		Status:  400,
	}
)
