/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var Verbose bool
var Debug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stats-tools",
	Short: "Descriptive statistics for numbers, tables and rasters",
	Long: `Computes the average, population variance and population standard
	deviation of a set of values:
	./stats-tools describe [opts] [values...]

	or of the samples falling inside each S2 cell:
	./stats-tools cellstats [opts] [tif_or_csv_file] [output_path]`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.stats-tools.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Verbose output")
	bindFlag(rootCmd.PersistentFlags().Lookup("verbose"))
	rootCmd.PersistentFlags().BoolVarP(&Debug, "debug", "d", false, "Debug output")
	bindFlag(rootCmd.PersistentFlags().Lookup("debug"))
}

// initConfig reads in config file and STATS_ env variables if set, then
// applies the log level.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".stats-tools")
	}

	viper.SetEnvPrefix("stats")
	viper.AutomaticEnv()

	// The config file may set verbose or debug itself.
	err := viper.ReadInConfig()
	setLogLevels()
	if err == nil {
		logrus.Infof("Using config file: %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		logrus.Warnf("Could not read config file %s: %v", cfgFile, err)
	}
}

func setLogLevels() {
	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	} else if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}
