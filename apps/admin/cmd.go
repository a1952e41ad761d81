package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/tkabila/chekechea/core/billing"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sql.DB
	billingSvc billing.ServiceInterface
}

func (cli *commandLine) usage() string {
	b := new(strings.Builder)
	fmt.Fprintln(b, "Usage:")
	fmt.Fprintln(b, "  migrate COMMAND [args] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(b, "  generateinvoices -year YYYY -month MM - generate the month's invoices")
	return b.String()
}

func (cli *commandLine) printUsage() {
	fmt.Print(cli.usage())
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	generateCmd := flag.NewFlagSet("generateinvoices", flag.ExitOnError)
	generateYear := generateCmd.Int("year", 0, "The billing year, e.g. 2026.")
	generateMonth := generateCmd.Int("month", 0, "The billing month, 1-12.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "generateinvoices":
		if err := generateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *generateYear == 0 || *generateMonth == 0 {
			generateCmd.Usage()
			return errHelp
		}
		return cli.generateInvoices(*generateYear, *generateMonth)
	default:
		cli.printUsage()
		return errHelp
	}
}
