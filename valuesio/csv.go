package valuesio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"stats-tools/cellstats"

	"github.com/sirupsen/logrus"
)

// ReadCSVColumn parses the named column of a header-led CSV as floats.
// Blank cells are skipped.
func ReadCSVColumn(r io.Reader, column string) ([]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	idx, err := columnIndex(header, column)
	if err != nil {
		return nil, err
	}

	var values []float64
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if idx >= len(record) || strings.TrimSpace(record[idx]) == "" {
			logrus.Debugf("Skipping blank %s on line %d", column, line)
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		values = append(values, value)
	}
	return values, nil
}

// ReadSamplesCSV reads lat,lng,value rows. Column order comes from the header.
func ReadSamplesCSV(r io.Reader) ([]cellstats.Sample, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	var idx [3]int
	for i, name := range []string{"lat", "lng", "value"} {
		if idx[i], err = columnIndex(header, name); err != nil {
			return nil, err
		}
	}

	var samples []cellstats.Sample
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		var fields [3]float64
		for i, col := range idx {
			if col >= len(record) {
				return nil, fmt.Errorf("line %d: missing column %d", line, col)
			}
			if fields[i], err = strconv.ParseFloat(strings.TrimSpace(record[col]), 64); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		samples = append(samples, cellstats.Sample{Lat: fields[0], Lng: fields[1], Value: fields[2]})
	}
	return samples, nil
}

func WriteSummariesCSV(w io.Writer, rows []cellstats.CellSummary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"s2_id", "count", "mean", "variance", "stdev", "geom"}); err != nil {
		return err
	}
	for i, row := range rows {
		if i%10000 == 0 {
			logrus.Infof("Writing row %d", i)
		}
		record := []string{
			strconv.FormatInt(int64(row.Cell), 10),
			strconv.Itoa(row.Count),
			strconv.FormatFloat(row.Mean, 'g', -1, 64),
			strconv.FormatFloat(row.Variance, 'g', -1, 64),
			strconv.FormatFloat(row.Stdev, 'g', -1, 64),
			row.Geom,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func columnIndex(header []string, column string) (int, error) {
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header %v", column, header)
}
