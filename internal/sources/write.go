package sources

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// WriteCSV writes d with a typed header ("name:TYPE") so that reading the
// file back restores the declared types. Nulls are written as empty cells.
func WriteCSV(w io.Writer, d *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	cols := d.Schema.Columns()

	header := make([]string, len(cols))
	for i, c := range cols {
		declared := c.Declared
		if declared == "" {
			declared = c.Type.String()
		}
		header[i] = c.Name + ":" + declared
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(cols))
	for _, row := range d.Rows {
		for i, v := range row {
			record[i] = dataset.Format(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes d to path, replacing any existing file.
func WriteCSVFile(path string, d *dataset.Dataset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.WrapIO("close", path, cerr)
		}
	}()
	return errors.WrapIO("write", path, WriteCSV(f, d))
}
