package alert

import (
	"fmt"
	"html"
	"strings"

	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/overtake-labs/staking-monitor/internal/utils"
	"github.com/shopspring/decimal"
)

const (
	tokenSymbol  = "TAKE"
	projectName  = "OVERTAKE"
	unbondingDay = 7
)

// FormatMessage renders the Telegram HTML body of an alert.
func FormatMessage(
	classified *types.ClassifiedTransaction, amount, fiat decimal.Decimal, explorerTxURL string,
) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s <b>%s %s</b>\n\n", classified.Function.Emoji(), projectName, classified.Function.Label())
	fmt.Fprintf(&b, "💰 <b>Amount:</b> %s %s\n", amount.StringFixed(2), tokenSymbol)
	fmt.Fprintf(&b, "💵 <b>USD:</b> $%s\n\n", fiat.StringFixed(2))
	fmt.Fprintf(&b, "👤 <b>Address:</b> <code>%s</code>\n", html.EscapeString(utils.TruncateMiddle(classified.Sender, 10, 8)))
	fmt.Fprintf(&b, "🔗 <b>TX:</b> <a href=\"%s%s\">View on Suiscan</a>\n",
		html.EscapeString(explorerTxURL), html.EscapeString(classified.Digest))

	if classified.Function == types.FunctionRequestUnstake {
		fmt.Fprintf(&b, "\n⏰ <i>Claimable after the %d-day unbonding period</i>", unbondingDay)
	}

	return b.String()
}
