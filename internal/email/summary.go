// Package email renders run summaries for the notifier implementations.
package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"freightx/internal/domain"
)

// maxListedFailures caps how many failed email IDs a summary spells out.
const maxListedFailures = 20

// Subject is the one-line headline for a run summary.
func Subject(s domain.RunSummary) string {
	name := s.RunName
	if name == "" {
		name = s.RunID
	}
	return fmt.Sprintf("freightx run %s: %d done, %d failed, %d skipped", name, s.Succeeded, s.Failed, s.Skipped)
}

// TextBody renders the plain-text summary.
func TextBody(s domain.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:        %s (%s)\n", s.RunName, s.RunID)
	fmt.Fprintf(&b, "Emails:     %d total, %d processed, %d skipped from checkpoint\n", s.Total, s.Processed, s.Skipped)
	fmt.Fprintf(&b, "Succeeded:  %d\n", s.Succeeded)
	fmt.Fprintf(&b, "Failed:     %d\n", s.Failed)
	fmt.Fprintf(&b, "Started:    %s\n", s.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Elapsed:    %s\n", s.Elapsed.Round(time.Second))
	if ids := listedFailures(s.FailedIDs); len(ids) > 0 {
		fmt.Fprintf(&b, "\nFailed emails:\n  %s\n", strings.Join(ids, "\n  "))
		if more := len(s.FailedIDs) - len(ids); more > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", more)
		}
	}
	return b.String()
}

// HTMLBody renders the HTML summary.
func HTMLBody(s domain.RunSummary) string {
	var rows strings.Builder
	for _, id := range listedFailures(s.FailedIDs) {
		fmt.Fprintf(&rows, "<li>%s</li>", html.EscapeString(id))
	}
	failures := ""
	if rows.Len() > 0 {
		failures = "<h3 style=\"color: #b91c1c;\">Failed emails</h3><ul>" + rows.String() + "</ul>"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Extraction run %s</h2>
  <table style="border-collapse: collapse;">
    <tr><td>Total</td><td>%d</td></tr>
    <tr><td>Processed</td><td>%d</td></tr>
    <tr><td>Skipped</td><td>%d</td></tr>
    <tr><td>Succeeded</td><td>%d</td></tr>
    <tr><td>Failed</td><td>%d</td></tr>
    <tr><td>Elapsed</td><td>%s</td></tr>
  </table>
  %s
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">run id %s</p>
</body>
</html>`, html.EscapeString(s.RunName), s.Total, s.Processed, s.Skipped, s.Succeeded, s.Failed,
		s.Elapsed.Round(time.Second), failures, html.EscapeString(s.RunID))
}

func listedFailures(ids []string) []string {
	if len(ids) > maxListedFailures {
		return ids[:maxListedFailures]
	}
	return ids
}
