package main

import (
	"context"
	"fmt"
	"os"
	"signalrelay/cmd/keys"
	"signalrelay/cmd/marketdata"
	"signalrelay/src/database"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "SignalRelay CMD"
	app.Usage = "The SignalRelay command line interface"

	app.Commands = []cli.Command{
		marketdataCMD,
		encryptKeysCMD,
		checkCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	marketdataCMD = cli.Command{
		Name:        "marketdata",
		Usage:       "run market data backfill",
		Action:      marketdataAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run market data backfill CMD`,
	}
	encryptKeysCMD = cli.Command{
		Name:        "encrypt_keys",
		Usage:       "encrypt exchange credentials",
		Action:      encryptKeysAction,
		ArgsUsage:   "<api-key> <api-secret>",
		Flags:       []cli.Flag{},
		Description: `Encrypt exchange credentials for the _ENC env variables`,
	}
	checkCMD = cli.Command{
		Name:        "check",
		Usage:       "verify exchange and notifier configuration",
		Action:      checkAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run one signed read-only exchange request and a notifier probe`,
	}
)

// marketdataAction will go get OHLCV candles for the traded symbol
func marketdataAction(_ *cli.Context) error {

	logrus.Info("Starting market data CMD")
	if err := database.InitDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	md := &marketdata.MarketData{
		Log: logrus.WithField("cmd", "marketdata"),
		DB:  database.DB,
	}

	err := md.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting market data cmd")
		return err
	}

	return nil
}

func encryptKeysAction(c *cli.Context) error {

	if c.NArg() != 2 {
		return fmt.Errorf("usage: encrypt_keys <api-key> <api-secret>")
	}

	return keys.Encrypt(c.Args().Get(0), c.Args().Get(1))
}

func checkAction(_ *cli.Context) error {

	logrus.Info("Starting configuration check CMD")

	err := keys.Check(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Starting check cmd")
		return err
	}

	return nil
}
