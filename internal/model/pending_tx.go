package model

import (
	"encoding/json"
)

// TxStatus is the history status of a submitted transaction.
type TxStatus string

const (
	TxSubmitted        TxStatus = "submitted"
	TxConfirmedAssumed TxStatus = "confirmed_assumed"
	TxReverted         TxStatus = "reverted"
)

// PendingTransaction is the history entry created for each accepted submission.
type PendingTransaction struct {
	Hash      string   `json:"hash"`
	Summary   string   `json:"summary"`
	Status    TxStatus `json:"status"`
	ChainID   uint64   `json:"chain_id"`
	From      string   `json:"from"`
	AddedAt   string   `json:"added_at"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// UnmarshalJSON decodes a PendingTransaction, defaulting a missing status to submitted.
func (p *PendingTransaction) UnmarshalJSON(data []byte) error {
	type Alias PendingTransaction
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = TxSubmitted
	}
	*p = PendingTransaction(a)
	return nil
}
