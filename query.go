package budget

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Query evaluates a JSONPath expression against the JSON form of the statistics, for instance
// "$.balances.netWorth" or "$.monthly[*].balance".
//
// Amounts are JSON numbers, dates DD-MMM-YYYY strings and ratios numbers in percent or null.
func (st *Statistics) Query(path string) (any, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty query")
	}
	if !strings.HasPrefix(path, "$") {
		path = "$." + strings.TrimPrefix(path, ".")
	}

	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encoding statistics: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding statistics: %w", err)
	}

	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", path, err)
	}
	return v, nil
}
