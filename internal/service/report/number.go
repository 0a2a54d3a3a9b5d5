package report

import (
	"fmt"
	"strings"
)

// reportNumberBase formats <prefix>-<case>-<year>. A case number that
// already carries the prefix is not prefixed twice.
func reportNumberBase(prefix, caseNumber string, year int) string {
	return fmt.Sprintf("%s-%s-%d", prefix, strings.TrimPrefix(caseNumber, prefix+"-"), year)
}

func reportNumber(base string, seq int64) string {
	return fmt.Sprintf("%s-%02d", base, seq)
}

// sequenceKey is derived from the formatted base, so cases whose numbers
// format the same draw from one counter.
func sequenceKey(base string) string {
	return "report:" + base
}
