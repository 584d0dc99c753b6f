package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// WithMessage returns a copy of e carrying a more specific message.
func (e Errno) WithMessage(msg string) Errno {
	return Errno{Code: e.Code, Message: msg}
}

// Is matches any Errno with the same code, so errors.Is(err, ErrBusy) holds
// for copies produced by WithMessage.
func (e Errno) Is(target error) bool {
	var t Errno
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var typed Errno
	if errors.As(err, &typed) {
		return typed.Code, typed.Message
	}
	var ptr *Errno
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code, ptr.Message
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrTooManyRequests  = Errno{Code: 10003, Message: "Too many requests"}
	ErrNotFound         = Errno{Code: 10004, Message: "Not found"}
	ErrConfig           = Errno{Code: 10005, Message: "Configuration error"}
)

// Session Errors (20100+)
var (
	ErrProviderAbsent = Errno{Code: 20101, Message: "Wallet provider not found"}
	ErrConnectFailed  = Errno{Code: 20102, Message: "Failed to connect wallet"}
	ErrBalanceFetch   = Errno{Code: 20103, Message: "Failed to fetch wallet balance"}
	ErrTransferFailed = Errno{Code: 20104, Message: "Transaction failed."}
	ErrBusy           = Errno{Code: 20105, Message: "A transaction is already in flight"}
	ErrNotReady       = Errno{Code: 20106, Message: "Transfer requires a connected wallet, a recipient and a positive amount"}
)
