package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/cssd/internal/report"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Complete every sterilization cycle that has run its full duration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		res, err := e.engine.Sweep(cmd.Context())
		printJSON(cmd.OutOrStdout(), res)
		return err
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the available pool with completed and issued items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		res, err := e.engine.Refresh(cmd.Context())
		printJSON(cmd.OutOrStdout(), res)
		return err
	},
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Rewrite the available pool without duplicate item ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		res, err := e.engine.DedupePool(cmd.Context())
		printJSON(cmd.OutOrStdout(), res)
		return err
	},
}

var (
	reportFrom   string
	reportTo     string
	reportDept   string
	reportFormat string
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the consumption report",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFrom, "from", "", "first day included (YYYY-MM-DD)")
	f.StringVar(&reportTo, "to", "", "last day included (YYYY-MM-DD)")
	f.StringVar(&reportDept, "department", "", "only this department")
	f.StringVarP(&reportFormat, "format", "f", "csv", "output format: csv, xlsx or json")
	f.StringVarP(&reportOut, "output", "o", "", "output file (default: stdout)")
}

func runReport(cmd *cobra.Command, _ []string) error {
	rng, err := report.ParseDateRange(reportFrom, reportTo)
	if err != nil {
		return err
	}
	switch reportFormat {
	case "csv", "xlsx", "json":
	default:
		return fmt.Errorf("unknown report format %q", reportFormat)
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	rep, err := e.service.ConsumptionReport(cmd.Context(), report.Query{Range: rng, Department: reportDept})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if reportOut != "" {
		f, err := os.Create(reportOut)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch reportFormat {
	case "xlsx":
		return report.WriteXLSX(w, rep)
	case "json":
		return printJSON(w, rep)
	default:
		return report.WriteCSV(w, rep.Records)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
