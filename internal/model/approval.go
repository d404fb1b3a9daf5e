package model

// ApprovalState tracks a token's router allowance relative to the required amount.
type ApprovalState uint8

const (
	ApprovalUnknown ApprovalState = iota
	ApprovalNotApproved
	ApprovalPending
	ApprovalApproved
)

func (s ApprovalState) String() string {
	switch s {
	case ApprovalNotApproved:
		return "not_approved"
	case ApprovalPending:
		return "pending"
	case ApprovalApproved:
		return "approved"
	default:
		return "unknown"
	}
}
