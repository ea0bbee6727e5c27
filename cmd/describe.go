package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"stats-tools/stats"
	"stats-tools/valuesio"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe [values...]",
	Short: "Print the average, variance and standard deviation of a set of values",
	Long: `Compute the count, average, population variance and population
	standard deviation of the given values.

	Values come from the command line, or from one column of a CSV or
	Parquet file:
		./stats-tools describe 1 2 3 4 5
		./stats-tools describe --csv data.csv --column reading
		./stats-tools describe --parquet data.parquet --column value

	Negative values look like flags, so put them after "--":
		./stats-tools describe --stat variance -- -1 -2 -3

	Options:
		--csv:		CSV file to read values from. The first row must be a header.
		--parquet:	Parquet file to read values from.
		--column:	Column holding the values. Default is "value".
		--format:	Output format, text or csv.
		--stat:		Print only one statistic, choose from: average, variance, stdev`,
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := loadValues(args)
		if err != nil {
			return err
		}

		if name := viper.GetString("stat"); name != "" {
			aggFunc, err := chooseAggFunc(name)
			if err != nil {
				return err
			}
			value, err := aggFunc(values...)
			if err != nil {
				return fmt.Errorf("no values to describe: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
			return err
		}

		summary, err := stats.Describe(values...)
		if errors.Is(err, stats.ErrEmptyInput) {
			return fmt.Errorf("no values to describe: %w", err)
		}
		if err != nil {
			return err
		}
		return printSummary(cmd.OutOrStdout(), summary, viper.GetString("format"))
	},
}

func chooseAggFunc(name string) (stats.AggFunc, error) {
	switch name {
	case "average", "mean":
		return stats.Average, nil
	case "variance":
		return stats.Variance, nil
	case "stdev":
		return stats.Stdev, nil
	default:
		return nil, fmt.Errorf("statistic %q not recognized, choose from: average, variance, stdev", name)
	}
}

// negativeValueHint points users at "--" when pflag rejects a value such
// as -1 as an unknown shorthand flag.
func negativeValueHint(cmd *cobra.Command, err error) error {
	if strings.Contains(err.Error(), "unknown shorthand flag") {
		return fmt.Errorf("%w (put negative values after \"--\", e.g. %s -- -1 -2)", err, cmd.CommandPath())
	}
	return err
}

func loadValues(args []string) ([]float64, error) {
	csvPath := viper.GetString("csv")
	parquetPath := viper.GetString("parquet")
	column := viper.GetString("column")

	switch {
	case csvPath != "" && parquetPath != "":
		return nil, errors.New("--csv and --parquet are mutually exclusive")
	case (csvPath != "" || parquetPath != "") && len(args) > 0:
		return nil, errors.New("values cannot be given both as arguments and from a file")
	case csvPath != "":
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := f.Close(); err != nil {
				logrus.Error(err)
			}
		}()
		return valuesio.ReadCSVColumn(f, column)
	case parquetPath != "":
		return valuesio.ReadParquetColumn(parquetPath, column)
	}

	values := make([]float64, 0, len(args))
	for _, arg := range args {
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", arg, err)
		}
		values = append(values, value)
	}
	return values, nil
}

func printSummary(w io.Writer, summary stats.Summary, format string) error {
	var err error
	switch format {
	case "csv":
		_, err = fmt.Fprintf(w, "count,average,variance,stdev\n%d,%v,%v,%v\n",
			summary.Count, summary.Average, summary.Variance, summary.Stdev)
	case "text":
		_, err = fmt.Fprintf(w, "count:    %d\naverage:  %v\nvariance: %v\nstdev:    %v\n",
			summary.Count, summary.Average, summary.Variance, summary.Stdev)
	default:
		err = fmt.Errorf("unknown format %q, choose from: text, csv", format)
	}
	return err
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().String("csv", "", "CSV file to read values from")
	bindFlag(describeCmd.Flags().Lookup("csv"))

	describeCmd.Flags().String("parquet", "", "Parquet file to read values from")
	bindFlag(describeCmd.Flags().Lookup("parquet"))

	describeCmd.Flags().StringP("column", "c", "value", "Column holding the values")
	bindFlag(describeCmd.Flags().Lookup("column"))

	describeCmd.Flags().StringP("format", "f", "text", "Output format, text or csv")
	bindFlag(describeCmd.Flags().Lookup("format"))

	describeCmd.Flags().StringP("stat", "s", "", "Print only one statistic: average, variance or stdev")
	bindFlag(describeCmd.Flags().Lookup("stat"))

	describeCmd.SetFlagErrorFunc(negativeValueHint)
}
