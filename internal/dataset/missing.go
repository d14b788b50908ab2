package dataset

import "sort"

// MissingCount is the number of missing cells in one column.
type MissingCount struct {
	Column string
	Count  int
}

// MissingReport lists columns with missing values, most missing first.
type MissingReport struct {
	Title   string
	Entries []MissingCount
	// Omitted is the number of columns with missing values cut by the row cap.
	Omitted int
}

// Empty reports whether no column had missing values.
func (r MissingReport) Empty() bool { return len(r.Entries) == 0 && r.Omitted == 0 }

// MissingCounts returns the missing count for every column in header order.
func (t *Table) MissingCounts() []MissingCount {
	out := make([]MissingCount, 0, len(t.columns))
	for _, c := range t.columns {
		n := 0
		for i := 0; i < t.rows; i++ {
			if t.IsMissing(c, i) {
				n++
			}
		}
		out = append(out, MissingCount{Column: c, Count: n})
	}
	return out
}

// SummarizeMissing keeps columns with at least one missing value, sorted by
// count descending, capped at maxRows entries (0 means no cap).
func SummarizeMissing(t *Table, title string, maxRows int) MissingReport {
	rep := MissingReport{Title: title}
	for _, mc := range t.MissingCounts() {
		if mc.Count > 0 {
			rep.Entries = append(rep.Entries, mc)
		}
	}
	sort.SliceStable(rep.Entries, func(i, j int) bool {
		return rep.Entries[i].Count > rep.Entries[j].Count
	})
	if maxRows > 0 && len(rep.Entries) > maxRows {
		rep.Omitted = len(rep.Entries) - maxRows
		rep.Entries = rep.Entries[:maxRows]
	}
	return rep
}
