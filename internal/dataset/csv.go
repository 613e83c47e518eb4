package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrEmptySnapshot is returned when a snapshot has no header line.
var ErrEmptySnapshot = errors.New("snapshot has no header")

// Decode reads a CSV snapshot with a header line. Gzip input is detected
// from the stream's magic bytes, so both .csv and .csv.gz payloads work.
func Decode(r io.Reader, source string) (*Dataset, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		return decodeCSV(zr, source)
	}
	return decodeCSV(br, source)
}

func decodeCSV(r io.Reader, source string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptySnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Strip a UTF-8 BOM from the first header cell.
	if len(header) > 0 && len(header[0]) >= 3 && header[0][:3] == "\xef\xbb\xbf" {
		header[0] = header[0][3:]
	}

	ds, err := New(source, header)
	if err != nil {
		return nil, err
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if err := ds.Append(rec...); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return ds, nil
}

// Encode writes the selected rows (or all rows) as CSV, without the
// Selected flag.
func (d *Dataset) Encode(w io.Writer, selectedOnly bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.columns); err != nil {
		return err
	}
	for _, r := range d.Rows {
		if selectedOnly && !r.Selected {
			continue
		}
		if err := cw.Write(r.Values); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
