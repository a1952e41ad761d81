package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) generateInvoices(year, month int) error {
	run, err := cli.billingSvc.GenerateMonthlyInvoices(context.Background(), year, month)
	if err != nil {
		return err
	}

	fmt.Printf("%d-%02d: %d invoice(s) generated, %d failure(s)\n", run.Year, run.Month, len(run.Invoices), len(run.Failures))
	for _, inv := range run.Invoices {
		name := inv.ChildID
		if inv.Child != nil {
			name = inv.Child.Name
		}
		fmt.Printf("  %-30s days=%d total=%d status=%s\n", name, inv.DaysPresent, inv.TotalAmount, inv.Status)
	}
	for _, fail := range run.Failures {
		fmt.Printf("  FAILED %s (%s): %s\n", fail.ChildName, fail.ChildID, fail.Error)
	}
	return nil
}
