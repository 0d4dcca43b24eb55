package notifier

import (
	"fmt"
	"strings"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

func emoji(s domain.Status) string {
	switch s {
	case domain.StatusSuccess:
		return "✅"
	case domain.StatusWarning:
		return "⚠️"
	default:
		return "🚨"
	}
}

// Message renders the text sent to every channel:
//
//	⚠️ warning: published with warnings: ...
//	run 0b7c... | fetched 3, deduped 1, rejected 0 | valid 20, invalid 2, published 20
func Message(report *domain.RunReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s: %s\n", emoji(report.Status), report.Status, report.Message)
	fmt.Fprintf(&b, "run %s | fetched %d, deduped %d, rejected %d | valid %d, invalid %d, published %d",
		report.RunID,
		report.Fetched, report.Deduped, report.Rejected,
		report.Valid, report.Invalid, report.Published,
	)

	if report.ErrorKind != "" {
		fmt.Fprintf(&b, "\nerror kind: %s", report.ErrorKind)
	}

	return b.String()
}
