package main

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"liquiditySupply/internal/amount"
	"liquiditySupply/internal/mint"
	"liquiditySupply/internal/model"
	"liquiditySupply/internal/supply"
)

func startSpinner(out io.Writer, suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " " + suffix
	s.Start()
	return s
}

// printQuote renders the pool, both amount boxes and the slippage bounds.
func printQuote(out io.Writer, session *supply.Session, slippageBps uint32) error {
	assets := session.Assets()
	pool := session.Pool()

	fmt.Fprintf(out, "Pair:     %s\n", color.CyanString(assets.Label()))
	switch {
	case pool.Active():
		fmt.Fprintf(out, "Pool:     %s  1 %s = %s %s\n", color.GreenString(pool.Status.String()),
			assets.A, pool.Rate.FloatString(mint.DisplaySignificant), assets.B)
	case pool.NoLiquidity():
		fmt.Fprintf(out, "Pool:     %s  you are setting the initial price\n", color.YellowString(pool.Status.String()))
	default:
		fmt.Fprintf(out, "Pool:     %s\n", color.RedString(pool.Status.String()))
	}

	boxes := session.Formatted()
	_, parseErrs := session.Amounts()
	for _, field := range model.Fields {
		line := fmt.Sprintf("Amount %s: %s %s", field, boxes[field], assets.Get(field))
		if err := parseErrs.For(field); err != nil {
			line += "  " + color.RedString(err.Error())
		}
		fmt.Fprintln(out, line)
	}

	mins, err := session.MinAmounts()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Minimums: %s %s and %s %s (%s slippage)\n",
		amount.FormatSignificant(mins.A, assets.A.Decimals, mint.DisplaySignificant), assets.A,
		amount.FormatSignificant(mins.B, assets.B.Decimals, mint.DisplaySignificant), assets.B,
		bpsPercent(effectiveBps(pool, slippageBps)))
	return nil
}

func printApprovals(out io.Writer, session *supply.Session) {
	assets := session.Assets()
	states := session.ApprovalStates()
	for _, field := range model.Fields {
		state := states[field]
		label := state.String()
		switch state {
		case model.ApprovalApproved:
			label = color.GreenString(label)
		case model.ApprovalPending:
			label = color.YellowString(label)
		case model.ApprovalNotApproved:
			label = color.RedString(label)
		}
		fmt.Fprintf(out, "Approval %s: %s %s\n", field, assets.Get(field), label)
	}
}

// printBlocker prints the reason the deposit is disabled and reports whether there was one.
func printBlocker(out io.Writer, session *supply.Session) bool {
	if err := session.Blocker(); err != nil {
		fmt.Fprintf(out, "Status:   %s\n", color.RedString(err.Error()))
		return true
	}
	fmt.Fprintf(out, "Status:   %s\n", color.GreenString("ready to supply"))
	return false
}

func effectiveBps(pool model.PoolState, bps uint32) uint32 {
	if pool.NoLiquidity() {
		return 0
	}
	return bps
}

func bpsPercent(bps uint32) string {
	return fmt.Sprintf("%d.%02d%%", bps/100, bps%100)
}

func statusLabel(status model.TxStatus) string {
	switch status {
	case model.TxConfirmedAssumed:
		return color.GreenString(string(status))
	case model.TxReverted:
		return color.RedString(string(status))
	default:
		return color.YellowString(string(status))
	}
}
