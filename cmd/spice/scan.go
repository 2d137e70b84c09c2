package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-sms/internal/cli"
	"github.com/Veraticus/spice-sms/internal/engine"
	"github.com/Veraticus/spice-sms/internal/smsbackup"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <backup.xml>",
		Short: "Scan an SMS backup for transactions",
		Long: `Read an "SMS Backup & Restore" XML export, run every received message
through the detector in parallel, and list the transactions it found.

Use --submit to queue them for review. Messages that match something
already pending are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().Bool("submit", false, "queue found transactions for review")
	cmd.Flags().Bool("quiet", false, "hide the progress bar")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	submit, _ := cmd.Flags().GetBool("submit")
	quiet, _ := cmd.Flags().GetBool("quiet")

	messages, err := smsbackup.ReadFile(args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	if len(messages) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No received messages in that backup."))
		return nil
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Scan")
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	ctx = handler.HandleInterrupts(ctx, "Nothing was queued. Re-run the scan when you're ready.")

	progressOut := cmd.ErrOrStderr()
	if quiet {
		progressOut = nil
	}
	bar := cli.NewProgressBar(progressOut, len(messages), "Scanning messages...")

	detections, err := s.detector.DetectBatch(ctx, messages, func() { _ = bar.Add(1) })
	if err != nil {
		return err
	}

	found := renderDetections(cmd, detections)
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d of %d messages look like transactions.", found, len(messages))))

	if !submit {
		return nil
	}
	added, err := s.detector.Submit(ctx, detections)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Queued %d new transactions for review (%d duplicates skipped).", added, found-added)))
	return nil
}

func renderDetections(cmd *cobra.Command, detections []engine.Detection) int {
	var rows [][]string
	for _, det := range detections {
		if !det.Found() {
			continue
		}
		tx := det.Transaction
		rows = append(rows, []string{
			tx.Date,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Description,
			tx.Category,
			orDash(tx.BankName),
			orDash(tx.AccountID),
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
			[]string{"Date", "Amount", "Description", "Category", "Bank", "Account"}, rows))
	}
	return len(rows)
}
