package txflow

import (
	"fmt"

	"liquiditySupply/internal/amount"
	"liquiditySupply/internal/model"
)

const (
	summarySignificant = 3
	pendingSignificant = 6
)

// Summary is the history line for a deposit, e.g. "Add 1.5 ETH and 300 DAI".
func Summary(assets model.AssetPair, amounts model.AmountPair) string {
	return describe("Add", assets, amounts, summarySignificant)
}

// PendingText is shown while the wallet confirms the deposit.
func PendingText(assets model.AssetPair, amounts model.AmountPair) string {
	return describe("Supplying", assets, amounts, pendingSignificant)
}

func describe(verb string, assets model.AssetPair, amounts model.AmountPair, sig int) string {
	return fmt.Sprintf("%s %s %s and %s %s",
		verb,
		amount.FormatSignificant(amounts.A, assets.A.Decimals, sig), assets.A,
		amount.FormatSignificant(amounts.B, assets.B.Decimals, sig), assets.B,
	)
}
