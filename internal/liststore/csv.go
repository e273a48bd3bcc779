package liststore

import (
	"fmt"
	"strings"
	"time"
)

// ExportCSV renders the records as a header line plus one line per
// record. Fields are joined with bare commas and not quoted, matching
// the console's historical export format: a value containing a comma
// shifts the columns of its row.
func ExportCSV[T any](records []T, headers []string, row func(T) []string) string {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(headers, ","))
	for _, rec := range records {
		lines = append(lines, strings.Join(row(rec), ","))
	}
	return strings.Join(lines, "\n")
}

// TimestampLocalID builds a local id from a prefix and the low-order
// digits of the unix-millisecond clock, e.g. REQ-4821 or PO-304821.
func TimestampLocalID(prefix string, digits int, now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > digits {
		ms = ms[len(ms)-digits:]
	}
	return prefix + "-" + ms
}
