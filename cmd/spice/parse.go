package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-sms/internal/cli"
	"github.com/Veraticus/spice-sms/internal/model"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Parse one notification",
		Long: `Run a single bank notification through the detector and show what it found.

With no arguments the text is read from stdin, so you can pipe a copied
message straight in.`,
		Example: `  spice parse "Rs.500.00 debited from A/c XX1234 on 26-01-26 to VPA swiggy@upi"
  pbpaste | spice parse --submit`,
		RunE: runParse,
	}

	cmd.Flags().String("sender", "", "SMS sender header, e.g. VM-HDFCBK")
	cmd.Flags().Bool("submit", false, "queue the transaction for review")
	cmd.Flags().Bool("json", false, "print the result as JSON")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	sender, _ := cmd.Flags().GetString("sender")
	submit, _ := cmd.Flags().GetBool("submit")
	asJSON, _ := cmd.Flags().GetBool("json")

	text := strings.Join(args, " ")
	source := model.SourceManual
	if len(args) == 0 {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(raw)
		source = model.SourceClipboard
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to parse: pass the message text or pipe it on stdin")
	}

	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	det := s.detector.Detect(model.RawMessage{
		ReceivedAt: time.Now(),
		Text:       text,
		Source:     source,
		Sender:     sender,
	})

	out := cmd.OutOrStdout()
	if asJSON {
		if err := writeJSON(out, det.Transaction); err != nil {
			return err
		}
	} else if det.MissingAmount() {
		fmt.Fprintln(out, cli.FormatWarning("Matched a custom rule, but the message has no amount."))
	} else if !det.Found() {
		fmt.Fprintln(out, cli.FormatWarning("No transaction found in that message."))
		return nil
	} else {
		fmt.Fprintln(out, cli.RenderTransaction("Parsed", *det.Transaction))
		if det.Extraction.RuleMatched {
			fmt.Fprintln(out, cli.FormatInfo("Matched a custom rule."))
		}
	}

	if !submit {
		return nil
	}
	if err := det.Queueable(); err != nil {
		return err
	}
	if !det.Found() {
		return nil
	}
	item, added, err := s.detector.Pending.Enqueue(ctx, det.Transaction)
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("Already pending, not queued again."))
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Queued for review as "+item.ID))
	return nil
}
