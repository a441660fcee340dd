package quality

import (
	"fmt"

	"github.com/agentstation/tablemerge/pkg/conflict"
	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// DuplicateKey is one key value that occurs more than once.
type DuplicateKey struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// DuplicateReport describes repeated key values in a dataset.
type DuplicateReport struct {
	Key           string         `json:"key" yaml:"key"`
	TotalRows     int            `json:"total_rows" yaml:"total_rows"`
	UniqueKeys    int            `json:"unique_keys" yaml:"unique_keys"`
	DuplicateKeys int            `json:"duplicate_keys" yaml:"duplicate_keys"`
	DuplicateRows int            `json:"duplicate_rows" yaml:"duplicate_rows"`
	Percentage    float64        `json:"duplicate_percentage" yaml:"duplicate_percentage"`
	Threshold     float64        `json:"threshold" yaml:"threshold"`
	Status        Status         `json:"status" yaml:"status"`
	Samples       []DuplicateKey `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// maxSamples caps the number of example keys kept in a report.
const maxSamples = 10

// DetectDuplicates counts key values that appear on more than one row.
// Null keys are ignored. The percentage is duplicate keys over unique keys.
func DetectDuplicates(d *dataset.Dataset, key string, threshold float64) (*DuplicateReport, error) {
	values, err := d.Column(key)
	if err != nil {
		return nil, err
	}
	if threshold < 0 {
		return nil, &errors.ValidationError{Field: "duplicate_threshold", Value: threshold, Message: "cannot be negative"}
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, v := range values {
		if dataset.IsNull(v) {
			continue
		}
		k := dataset.KeyString(v)
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	r := &DuplicateReport{
		Key:        key,
		TotalRows:  d.Len(),
		UniqueKeys: len(counts),
		Threshold:  threshold,
	}
	for _, k := range order {
		n := counts[k]
		if n < 2 {
			continue
		}
		r.DuplicateKeys++
		r.DuplicateRows += n - 1
		if len(r.Samples) < maxSamples {
			r.Samples = append(r.Samples, DuplicateKey{Value: k, Count: n})
		}
	}
	if r.UniqueKeys > 0 {
		r.Percentage = round2(float64(r.DuplicateKeys) / float64(r.UniqueKeys) * 100)
	}
	r.Status = statusFor(r.Percentage, threshold)
	return r, nil
}

// Conflict converts a report with duplicates into a DUPLICATE_RISK conflict
// on the key column. It returns false when there are no duplicates.
func (r *DuplicateReport) Conflict(side string) (conflict.Conflict, bool) {
	if r.DuplicateKeys == 0 {
		return conflict.Conflict{}, false
	}
	severity := conflict.DefaultSeverity(conflict.KindDuplicateRisk)
	if !r.Status.Passed() {
		severity = conflict.SeverityMedium
	}
	c := conflict.Conflict{
		Kind:     conflict.KindDuplicateRisk,
		Severity: severity,
		Description: fmt.Sprintf("%d key values of %s repeat across %d extra rows (%.2f%%); the join will fan out",
			r.DuplicateKeys, r.Key, r.DuplicateRows, r.Percentage),
	}
	if side == "right" {
		c.RightColumn = r.Key
	} else {
		c.LeftColumn = r.Key
	}
	return c, true
}
