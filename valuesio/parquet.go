package valuesio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"stats-tools/cellstats"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"
)

const rowBufferSize = 1024

type ValueRow struct {
	Value float64 `parquet:"value"`
}

type CellRow struct {
	S2id     int64   `parquet:"s2_id"`
	Count    int64   `parquet:"count"`
	Mean     float64 `parquet:"mean"`
	Variance float64 `parquet:"variance"`
	Stdev    float64 `parquet:"stdev"`
	Geom     string  `parquet:"geom"`
}

// ReadParquetColumn returns every non-null value of a numeric column.
func ReadParquetColumn(path string, column string) (values []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, err
	}
	leaf, ok := pf.Schema().Lookup(column)
	if !ok {
		return nil, fmt.Errorf("column %q not found in %s", column, path)
	}

	reader := parquet.NewReader(pf)
	defer func() {
		err = errors.Join(err, reader.Close())
	}()

	rows := make([]parquet.Row, rowBufferSize)
	for {
		n, readErr := reader.ReadRows(rows)
		for _, row := range rows[:n] {
			for _, v := range row {
				if v.Column() != leaf.ColumnIndex || v.IsNull() {
					continue
				}
				value, err := toFloat(v)
				if err != nil {
					return nil, fmt.Errorf("column %q: %w", column, err)
				}
				values = append(values, value)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}
	logrus.Infof("Read %d values from %s", len(values), path)
	return values, nil
}

func toFloat(v parquet.Value) (float64, error) {
	switch v.Kind() {
	case parquet.Double:
		return v.Double(), nil
	case parquet.Float:
		return float64(v.Float()), nil
	case parquet.Int32:
		return float64(v.Int32()), nil
	case parquet.Int64:
		return float64(v.Int64()), nil
	default:
		return 0, fmt.Errorf("unsupported kind %v", v.Kind())
	}
}

func WriteParquetValues(path string, values []float64) error {
	rows := make([]ValueRow, len(values))
	for i, v := range values {
		rows[i] = ValueRow{Value: v}
	}
	return writeParquet(path, rows)
}

func WriteSummariesParquet(path string, summaries []cellstats.CellSummary) error {
	rows := make([]CellRow, len(summaries))
	for i, s := range summaries {
		rows[i] = CellRow{int64(s.Cell), int64(s.Count), s.Mean, s.Variance, s.Stdev, s.Geom}
	}
	return writeParquet(path, rows)
}

func writeParquet[T any](path string, rows []T) (err error) {
	output, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, output.Close())
	}()
	return writeRows(output, rows)
}

// writeRows always closes the parquet writer, so a failed Write still
// releases its buffers and surfaces any flush error.
func writeRows[T any](output io.Writer, rows []T) error {
	schema := parquet.SchemaOf(new(T))
	writer := parquet.NewGenericWriter[T](output, schema, parquet.Compression(&parquet.Snappy))

	for start := 0; start < len(rows); start += rowBufferSize {
		end := min(start+rowBufferSize, len(rows))
		logrus.Infof("Writing row %d", start)
		if _, err := writer.Write(rows[start:end]); err != nil {
			return errors.Join(err, writer.Close())
		}
	}
	return writer.Close()
}
