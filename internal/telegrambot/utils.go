package telegrambot

import (
	"fmt"
	"html"
	"strings"

	"github.com/pulsescalp/channel-gate/internal/verifier"
)

// FormatCheck renders a verification result as a Telegram HTML message.
func FormatCheck(userID int64, check verifier.Check) string {
	var sb strings.Builder

	if check.Passed() {
		sb.WriteString(fmt.Sprintf("✅ User <code>%d</code> is a member of all %d required channels.", userID, len(check.OK)))

		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("❌ User <code>%d</code> is missing %d of %d channels:\n\n",
		userID, len(check.Missing), len(check.OK)+len(check.Missing)))

	for _, ch := range check.Missing {
		sb.WriteString(fmt.Sprintf("• <b>%s</b>", html.EscapeString(ch.Title)))

		detail := check.Details[ch.ID]
		if detail.Error != "" {
			sb.WriteString(" <i>(lookup failed)</i>")
		} else if detail.Status != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(detail.Status)))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
