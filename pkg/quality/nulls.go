package quality

import "github.com/agentstation/tablemerge/pkg/dataset"

// ColumnNulls is the null profile of one column.
type ColumnNulls struct {
	Column     string  `json:"column" yaml:"column"`
	Nulls      int     `json:"null_count" yaml:"null_count"`
	Percentage float64 `json:"null_percentage" yaml:"null_percentage"`
	Status     Status  `json:"status" yaml:"status"`
}

// NullReport profiles nulls across every column of a dataset.
type NullReport struct {
	TotalRows    int           `json:"total_rows" yaml:"total_rows"`
	Columns      []ColumnNulls `json:"columns" yaml:"columns"`
	Failing      []string      `json:"failing,omitempty" yaml:"failing,omitempty"`
	Completeness float64       `json:"completeness" yaml:"completeness"`
	Threshold    float64       `json:"threshold" yaml:"threshold"`
	Status       Status        `json:"status" yaml:"status"`
}

// CheckNulls counts nulls per column. A column fails when its null
// percentage exceeds threshold; the report fails when any column fails.
// An empty dataset yields a WARNING with no column rows.
func CheckNulls(d *dataset.Dataset, threshold float64) *NullReport {
	r := &NullReport{
		TotalRows:    d.Len(),
		Columns:      []ColumnNulls{},
		Threshold:    threshold,
		Completeness: 100,
	}
	if d.Len() == 0 {
		r.Status = StatusWarning
		return r
	}

	total := 0
	anyNulls := false
	for j, c := range d.Schema.Columns() {
		n := 0
		for _, row := range d.Rows {
			if dataset.IsNull(row[j]) {
				n++
			}
		}
		pct := round2(float64(n) / float64(d.Len()) * 100)
		cn := ColumnNulls{Column: c.Name, Nulls: n, Percentage: pct, Status: statusFor(pct, threshold)}
		if cn.Status == StatusFailed {
			r.Failing = append(r.Failing, c.Name)
		}
		anyNulls = anyNulls || n > 0
		total += n
		r.Columns = append(r.Columns, cn)
	}

	if cells := d.Len() * d.Schema.Len(); cells > 0 {
		r.Completeness = round2((1 - float64(total)/float64(cells)) * 100)
	}
	switch {
	case len(r.Failing) > 0:
		r.Status = StatusFailed
	case anyNulls:
		r.Status = StatusWarning
	default:
		r.Status = StatusPassed
	}
	return r
}
