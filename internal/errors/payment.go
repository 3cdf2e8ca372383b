package errors

var (
	ErrMethodDisabled = &DomainError{
		Code:    "METHOD_DISABLED",
		Message: "payment method is currently unavailable",
		Status:  503,
	}
	ErrGatewayFailure = &DomainError{
		Code:    "GATEWAY_FAILURE",
		Message: "payment could not be processed",
		Status:  500,
	}
	ErrCapExceeded = &DomainError{
		Code:    "CAP_EXCEEDED",
		Message: "offer claim limit has been reached",
		Status:  409,
	}
	ErrCardNotFound = &DomainError{
		Code:    "CARD_NOT_FOUND",
		Message: "stored card not found",
		Status:  404,
	}
	ErrBankNotFound = &DomainError{
		Code:    "BANK_NOT_FOUND",
		Message: "bank not found",
		Status:  404,
	}
	ErrCliqRequestNotFound = &DomainError{
		Code:    "CLIQ_REQUEST_NOT_FOUND",
		Message: "bank transfer request not found",
		Status:  404,
	}
	ErrCliqRequestExpired = &DomainError{
		Code:    "CLIQ_REQUEST_EXPIRED",
		Message: "bank transfer request has expired",
		Status:  410,
	}
	ErrSubscriptionInactive = &DomainError{
		Code:    "SUBSCRIPTION_INACTIVE",
		Message: "retailer subscription is not active",
		Status:  403,
	}
)
