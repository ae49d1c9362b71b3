package download

import (
	"fmt"
	"strings"
)

// maxListedFailures caps the failure lines in a report; the remainder is
// folded into a single count so a large failed batch stays readable.
const maxListedFailures = 5

// FormatReport renders the user-facing summary for a finished run. Links
// dropped by the batch limit are reported on every path, including the
// single-survivor one.
func FormatReport(outcome Outcome) string {
	failed := len(outcome.Failures)

	if outcome.Requested == 1 {
		var line string
		if failed == 0 {
			line = "Done."
		} else {
			f := outcome.Failures[0]
			line = fmt.Sprintf("Download failed: %s (%s)", displayName(f), f.Reason)
		}
		if outcome.Truncated > 0 {
			line += fmt.Sprintf(" %d links skipped over the batch limit.", outcome.Truncated)
		}
		return line
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Batch finished: %d of %d delivered.", outcome.Succeeded, outcome.Requested)
	if outcome.Truncated > 0 {
		fmt.Fprintf(&b, " %d links skipped over the batch limit.", outcome.Truncated)
	}

	for i, f := range outcome.Failures {
		if i == maxListedFailures {
			fmt.Fprintf(&b, "\n...and %d more failures.", failed-maxListedFailures)
			break
		}
		fmt.Fprintf(&b, "\n- %s: %s", displayName(f), f.Reason)
	}
	return b.String()
}

func displayName(f ItemFailure) string {
	if f.Title != "" {
		return f.Title
	}
	return f.URL
}
