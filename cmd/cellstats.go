package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stats-tools/cellstats"
	"stats-tools/valuesio"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cellstatsCmd represents the cellstats command
var cellstatsCmd = &cobra.Command{
	Use:   "cellstats [tif_or_csv_file] [output_path]",
	Short: "Group samples into S2 cells and describe each cell",
	Long: `Read samples from a GeoTIFF band (one sample per pixel centre) or a
	CSV file with lat,lng,value columns, bucket them into S2 cells and write
	the count, mean, population variance and population standard deviation
	of every cell to a Parquet or CSV file.

	Options:
		--numWorkers:	Number of workers computing cell statistics.
		--s2Lvl:	S2 cell level to group by. Essentially output resolution.
		--band:		Raster band to read, starting at 1.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, err := loadSamples(args[0], viper.GetInt("band"))
		if err != nil {
			return err
		}
		logrus.Infof("Loaded %d samples from %s", len(samples), args[0])

		opts := cellstats.ConfigOpts{
			NumWorkers: viper.GetInt("numWorkers"),
			S2Lvl:      viper.GetInt("s2Lvl"),
		}
		summaries, err := cellstats.Summarize(samples, opts)
		if err != nil {
			return err
		}
		return writeSummaries(args[1], summaries)
	},
}

func loadSamples(path string, band int) ([]cellstats.Sample, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return valuesio.ReadRasterBand(path, band)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := f.Close(); err != nil {
				logrus.Error(err)
			}
		}()
		return valuesio.ReadSamplesCSV(f)
	default:
		return nil, fmt.Errorf("unsupported input %s, expected .tif, .tiff or .csv", path)
	}
}

func writeSummaries(path string, summaries []cellstats.CellSummary) (err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return valuesio.WriteSummariesParquet(path, summaries)
	case ".csv":
		f, createErr := os.Create(path)
		if createErr != nil {
			return createErr
		}
		defer func() {
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
		}()
		return valuesio.WriteSummariesCSV(f, summaries)
	default:
		return fmt.Errorf("unsupported output %s, expected .parquet or .csv", path)
	}
}

func init() {
	rootCmd.AddCommand(cellstatsCmd)

	cellstatsCmd.Flags().IntP("numWorkers", "n", 8, "Number of workers computing cell statistics")
	bindFlag(cellstatsCmd.Flags().Lookup("numWorkers"))

	cellstatsCmd.Flags().IntP("s2Lvl", "l", 11, "S2 cell level to group by. Essentially output resolution")
	bindFlag(cellstatsCmd.Flags().Lookup("s2Lvl"))

	cellstatsCmd.Flags().IntP("band", "b", 1, "Raster band to read, starting at 1")
	bindFlag(cellstatsCmd.Flags().Lookup("band"))
}
