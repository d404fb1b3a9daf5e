package chain

import (
	"errors"

	"github.com/ethereum/go-ethereum/rpc"
)

// UserRejectedCode is the EIP-1193 code a wallet returns when the user declines.
const UserRejectedCode = 4001

// UserRejectedError is returned by local signers when the user declines a prompt.
type UserRejectedError struct {
	Reason string
}

func (e *UserRejectedError) Error() string {
	if e.Reason == "" {
		return "user rejected the request"
	}
	return "user rejected the request: " + e.Reason
}

func (e *UserRejectedError) ErrorCode() int {
	return UserRejectedCode
}

// IsUserRejected reports whether err carries the user rejection code, whether it
// came from a remote wallet over JSON-RPC or from a local prompt.
func IsUserRejected(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == UserRejectedCode
}
