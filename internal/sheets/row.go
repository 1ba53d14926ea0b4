package sheets

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RowFromJSON flattens a decoded JSON object into a Row. Strings are kept,
// numbers and booleans are formatted, and arrays or objects (the tags
// column) are stored as their JSON text.
func RowFromJSON(obj map[string]any) (Row, error) {
	row := make(Row, len(obj))
	for k, v := range obj {
		switch x := v.(type) {
		case nil:
			row[k] = ""
		case string:
			row[k] = x
		case float64:
			row[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			row[k] = strconv.FormatBool(x)
		case json.Number:
			row[k] = x.String()
		case []any, map[string]any:
			b, err := json.Marshal(x)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", k, err)
			}
			row[k] = string(b)
		default:
			row[k] = fmt.Sprint(x)
		}
	}
	return row, nil
}

// Values lays row out along header. Absent cells become "" and columns
// the header does not know are dropped.
func Values(header []string, row Row) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = row[h]
	}
	return out
}

// FromValues maps a value slice onto header. Short rows are padded with "".
func FromValues(header, values []string) Row {
	row := make(Row, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(values) {
			row[h] = values[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
