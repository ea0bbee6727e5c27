package cmd

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stats-tools/stats"
	"stats-tools/valuesio"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestMain(m *testing.M) {
	for _, kv := range os.Environ() {
		if key, _, _ := strings.Cut(kv, "="); strings.HasPrefix(key, "STATS_") {
			os.Unsetenv(key)
		}
	}
	os.Exit(m.Run())
}

// execute runs the root command with HOME pointed at an empty directory so
// a developer's ~/.stats-tools.yaml is never read.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

// resetFlags restores defaults, since flag values and viper state outlive a
// single Execute.
func resetFlags() {
	viper.Reset()
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
		_ = viper.BindPFlag(f.Name, f)
	}
	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })
	return &buf
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDescribeArgs(t *testing.T) {
	got, err := execute(t, "describe", "--format", "csv", "1", "2", "3", "4", "5")
	if err != nil {
		t.Fatal(err)
	}
	want := "count,average,variance,stdev\n5,3,2,1.4142135623730951\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDescribeNegativeValues(t *testing.T) {
	got, err := execute(t, "describe", "--stat", "variance", "--", "-1", "-2", "-3")
	if err != nil {
		t.Fatal(err)
	}
	if want := "0.6666666666666666\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got, err = execute(t, "describe", "--", "-1", "-2", "-3")
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{"average:  -2", "variance: 0.6666666666666666"} {
		if !strings.Contains(got, line) {
			t.Errorf("output %q missing %q", got, line)
		}
	}
}

func TestDescribeNegativeValuesNeedSeparator(t *testing.T) {
	_, err := execute(t, "describe", "-1", "-2", "-3")
	if err == nil {
		t.Fatal("got nil error")
	}
	if !strings.Contains(err.Error(), `"--"`) {
		t.Errorf("got %q, want a hint about \"--\"", err)
	}
}

func TestDescribeStat(t *testing.T) {
	tests := []struct {
		stat string
		want string
	}{
		{"average", "3\n"},
		{"mean", "3\n"},
		{"variance", "4\n"},
		{"stdev", "2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.stat, func(t *testing.T) {
			got, err := execute(t, "describe", "-s", tt.stat, "1", "5")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := execute(t, "describe", "--stat", "median", "1", "5"); err == nil {
		t.Error("unknown statistic: got nil error")
	}
	if _, err := execute(t, "describe", "--stat", "stdev"); !errors.Is(err, stats.ErrEmptyInput) {
		t.Errorf("empty input: got %v, want %v", err, stats.ErrEmptyInput)
	}
}

func TestChooseAggFunc(t *testing.T) {
	for name, want := range map[string]float64{"average": 6, "variance": 8, "stdev": math.Sqrt(8)} {
		aggFunc, err := chooseAggFunc(name)
		if err != nil {
			t.Fatal(err)
		}
		if got, _ := aggFunc(10, 2, 8, 4, 6); got != want {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
	if _, err := chooseAggFunc("sum"); err == nil {
		t.Error("sum: got nil error")
	}
}

func TestConfigFile(t *testing.T) {
	cfg := writeFile(t, "stats.yaml", "format: csv\n")
	logs := captureLogs(t)

	got, err := execute(t, "describe", "--config", cfg, "1", "5")
	if err != nil {
		t.Fatal(err)
	}
	if want := "count,average,variance,stdev\n2,3,4,2\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if strings.Contains(logs.String(), "Using config file") {
		t.Errorf("config file logged without --verbose: %q", logs.String())
	}

	if _, err := execute(t, "describe", "-v", "--config", cfg, "1", "5"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "Using config file") {
		t.Errorf("config file not logged with --verbose: %q", logs.String())
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("STATS_FORMAT", "csv")
	got, err := execute(t, "describe", "1", "5")
	if err != nil {
		t.Fatal(err)
	}
	if want := "count,average,variance,stdev\n2,3,4,2\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDescribeEmpty(t *testing.T) {
	_, err := execute(t, "describe")
	if !errors.Is(err, stats.ErrEmptyInput) {
		t.Errorf("got %v, want %v", err, stats.ErrEmptyInput)
	}
}

func TestDescribeInvalidValue(t *testing.T) {
	if _, err := execute(t, "describe", "1", "two"); err == nil {
		t.Error("got nil error")
	}
}

func TestDescribeCSV(t *testing.T) {
	path := writeFile(t, "data.csv", "id,reading\na,10\nb,2\nc,8\nd,4\ne,6\n")

	got, err := execute(t, "describe", "--csv", path, "--column", "reading")
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{"count:    5", "average:  6", "variance: 8", "stdev:    2.8284271247461903"} {
		if !strings.Contains(got, line) {
			t.Errorf("output %q missing %q", got, line)
		}
	}
}

func TestDescribeParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.parquet")
	if err := valuesio.WriteParquetValues(path, []float64{1, 5}); err != nil {
		t.Fatal(err)
	}

	got, err := execute(t, "describe", "--parquet", path, "-f", "csv")
	if err != nil {
		t.Fatal(err)
	}
	if want := "count,average,variance,stdev\n2,3,4,2\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCellstatsCSV(t *testing.T) {
	in := writeFile(t, "samples.csv", "lat,lng,value\n1,2,1\n1,2,5\n-45,-120,7\n")
	out := filepath.Join(t.TempDir(), "cells.csv")

	if _, err := execute(t, "cellstats", "-n", "2", "-l", "11", in, out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header and 2 cells:\n%s", len(lines), data)
	}
	if lines[0] != "s2_id,count,mean,variance,stdev,geom" {
		t.Errorf("got header %q", lines[0])
	}
}

func TestCellstatsUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "cellstats", filepath.Join(dir, "in.json"), filepath.Join(dir, "out.csv")); err == nil {
		t.Error("unsupported input: got nil error")
	}

	in := writeFile(t, "samples.csv", "lat,lng,value\n1,2,1\n")
	if _, err := execute(t, "cellstats", in, filepath.Join(dir, "out.txt")); err == nil {
		t.Error("unsupported output: got nil error")
	}
}
