package stats

import (
	"fmt"
	"strings"

	"github.com/m3rciful/folio/core/telegram/format"
)

// Render formats sum as Telegram Markdown for a window of days.
func Render(sum Summary, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Panel views, last %d days*\n", days)
	fmt.Fprintf(&b, "since %s\n\n", sum.Since.UTC().Format("2006-01-02 15:04 MST"))
	if len(sum.Panels) == 0 {
		b.WriteString("No views yet.")
		return b.String()
	}
	for _, p := range sum.Panels {
		fmt.Fprintf(&b, "%s: %d views, %d users\n", format.EscapeV1(p.Panel), p.Views, p.Users)
	}
	fmt.Fprintf(&b, "\n*Total:* %d views, %d users", sum.Views(), sum.Users)
	return b.String()
}
