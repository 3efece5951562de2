package errno

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
	ErrOffline          = Errno{Code: 10005, Message: "Device is offline"}
)

// Gateway Errors (20100+)
var (
	ErrSessionNotInitialized = Errno{Code: 20101, Message: "Gateway session not initialized"}
	ErrGatewayTransport      = Errno{Code: 20102, Message: "Gateway call failed"}
	ErrBatchAppend           = Errno{Code: 20103, Message: "Appending transaction to gateway batch failed"}
	ErrBatchSubmit           = Errno{Code: 20104, Message: "Submitting gateway batch failed"}
	ErrDepositFetch          = Errno{Code: 20105, Message: "Fetching payment deposits failed"}
)

// Wallet Errors (20200+)
var (
	ErrAccountNotFound   = Errno{Code: 20201, Message: "Account not found"}
	ErrAssetNotFound     = Errno{Code: 20202, Message: "Asset not found"}
	ErrSendInProgress    = Errno{Code: 20203, Message: "Another send is already in flight for this account"}
	ErrNoGatewayAccounts = Errno{Code: 20204, Message: "Gateway returned no accounts"}
)
