package main

import (
	"os"

	"github.com/chenyanchen/fixture/cmd/fixturectl/subcmd"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := subcmd.Execute(); err != nil {
		logrus.WithError(err).Error("fixturectl failed")
		os.Exit(1)
	}
}
