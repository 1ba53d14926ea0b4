package google

import (
	"fmt"
	"strings"

	ports "mapfin/internal/sheets"
)

// rowsFromValues maps a values matrix whose first row is the header into
// rows. Missing trailing cells become "" and blank rows are dropped.
func rowsFromValues(values [][]any) []ports.Row {
	if len(values) < 2 {
		return []ports.Row{}
	}
	header := toStrings(values[0])
	out := make([]ports.Row, 0, len(values)-1)
	for _, v := range values[1:] {
		cells := toStrings(v)
		if blank(cells) {
			continue
		}
		out = append(out, ports.FromValues(header, cells))
	}
	return out
}

// findRow returns the index in values of the row whose id column equals
// id, or -1. values[0] is the header.
func findRow(values [][]any, id string) int {
	if len(values) == 0 || id == "" {
		return -1
	}
	col := indexOf(toStrings(values[0]), ports.IDColumn)
	if col < 0 {
		return -1
	}
	for i := 1; i < len(values); i++ {
		if safeGet(toStrings(values[i]), col) == id {
			return i
		}
	}
	return -1
}

// columnLetter converts a 1-based column number to its A1 letters.
func columnLetter(n int) string {
	if n < 1 {
		n = 1
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
