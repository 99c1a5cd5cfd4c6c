package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var listMarker = regexp.MustCompile(`(?i)^(?:option\s*\d+\s*[:.)\-]|\d+\s*[.):\-]|\(?[a-d]\s*[.)])\s*`)

func extractOptions(text string) Result {
	if arr, ok := boundary(text, '[', ']'); ok {
		var items []string
		if err := json.Unmarshal([]byte(arr), &items); err == nil {
			var out []string
			for _, item := range items {
				if item = strings.TrimSpace(item); item != "" {
					out = append(out, item)
				}
			}
			if len(out) > 0 {
				return Result{Shape: ShapeOptionList, Strategy: StrategyJSON, Options: out}
			}
		}
	}

	var out []string
	for _, line := range lines(text) {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return none(ShapeOptionList)
	}
	return Result{Shape: ShapeOptionList, Strategy: StrategyPattern, Options: out}
}
