package handlers

import "strconv"

// atoiOr converts s to int, falling back to def when empty or malformed.
func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// pct returns part as a whole percentage of total; 0 when total is 0.
func pct(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(float64(part)/float64(total)*100 + 0.5)
}

func boolPtrOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
