package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func bindFlag(flag *pflag.Flag) {
	if err := viper.BindPFlag(flag.Name, flag); err != nil {
		logrus.Error(err)
		logrus.Exit(1)
	}
}
