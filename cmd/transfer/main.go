package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/vault.banking/pkg/app"
	"github.com/evgeny-myasishchev/vault.banking/pkg/bankapi"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

var cliArgs struct {
	cmd       string
	username  string
	password  string
	source    string
	iban      string
	name      string
	amount    string
	reference string
}

func init() {
	flag.StringVar(&cliArgs.cmd, "cmd", "transfer", "Command to run. Available commands: transfer, user")
	flag.StringVar(&cliArgs.username, "username", "", "Username to login with")
	flag.StringVar(&cliArgs.password, "password", "", "Password to login with")
	flag.StringVar(&cliArgs.source, "source", "", "Source account id")
	flag.StringVar(&cliArgs.iban, "iban", "", "Recipient IBAN")
	flag.StringVar(&cliArgs.name, "name", "", "Recipient name")
	flag.StringVar(&cliArgs.amount, "amount", "", "Amount to transfer, e.g 100.50")
	flag.StringVar(&cliArgs.reference, "reference", "", "Payment reference")

	flag.Parse()
}

func showHelpAndExit() {
	flag.PrintDefaults()
	os.Exit(1)
}

var newAPI bankapi.Factory = bankapi.NewAPI

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func run(ctx context.Context, baseURL string) error {
	api, err := newAPI(ctx, baseURL, cliArgs.username, cliArgs.password)
	if err != nil {
		return err
	}
	defer func() {
		if err := api.Logout(ctx); err != nil {
			logger.WithError(err).Warn(ctx, "Failed to logout")
		}
	}()

	switch cliArgs.cmd {
	case "user":
		user, err := api.CurrentUser(ctx)
		if err != nil {
			return err
		}
		return printJSON(user)
	case "transfer":
		if cliArgs.source == "" || cliArgs.iban == "" || cliArgs.amount == "" {
			return errors.New("source, iban and amount are required")
		}
		result, err := api.Transfer(ctx, bankapi.TransferRequest{
			SourceAccountID: cliArgs.source,
			RecipientIBAN:   cliArgs.iban,
			RecipientName:   cliArgs.name,
			Amount:          json.Number(cliArgs.amount),
			Reference:       cliArgs.reference,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	default:
		return errors.Errorf("unknown command: %v", cliArgs.cmd)
	}
}

func main() {
	if cliArgs.username == "" || cliArgs.password == "" {
		showHelpAndExit()
	}
	_ = godotenv.Load()
	ctx := context.Background()

	appCfg, err := app.LoadConfig(ctx)
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to load app config")
		os.Exit(1)
	}

	diag.SetupLoggingSystem(func(setup diag.LoggingSystemSetup) {
		setup.SetLogLevel(appCfg.Log.Level.Value())
	})

	if err := run(ctx, appCfg.API.BaseURL.Value()); err != nil {
		logger.WithError(err).Error(ctx, "Command %v failed", cliArgs.cmd)
		os.Exit(1)
	}
}
