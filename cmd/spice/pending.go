package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-sms/internal/cli"
)

func pendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Review transactions waiting for confirmation",
	}

	cmd.AddCommand(listPendingCmd())
	cmd.AddCommand(confirmPendingCmd())
	cmd.AddCommand(dismissPendingCmd())
	cmd.AddCommand(reviewPendingCmd())

	return cmd
}

func listPendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending transactions, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.detector.Pending.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing pending."))
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				tx := item.Transaction
				rows = append(rows, []string{
					item.ID,
					tx.Date,
					strconv.FormatFloat(tx.Amount, 'f', 2, 64),
					tx.Description,
					tx.Category,
					orDash(tx.AccountID),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
				[]string{"ID", "Date", "Amount", "Description", "Category", "Account"}, rows))
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "print the queue as JSON")
	return cmd
}

func confirmPendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm <id>",
		Short: "Accept a pending transaction",
		Long: `Accept a pending transaction. Passing --category with a different
category teaches the classifier the correction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _ := cmd.Flags().GetString("category")

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			item, err := s.detector.Pending.Confirm(cmd.Context(), args[0], cat)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Confirmed %s as %s", item.Transaction.Description, item.Transaction.Category)))
			return nil
		},
	}

	cmd.Flags().String("category", "", "category to confirm under")
	return cmd
}

func dismissPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Drop a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.detector.Pending.Dismiss(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Dismissed "+args[0]))
			return nil
		},
	}
}

func reviewPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Walk through pending transactions interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			items, err := s.detector.Pending.List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("Nothing pending."))
				return nil
			}

			reviewer := cli.NewReviewer(cmd.InOrStdin(), out)
			var confirmed, dismissed int
		review:
			for i, item := range items {
				verdict, err := reviewer.Review(ctx, item, i+1, len(items))
				if errors.Is(err, cli.ErrInputCancelled) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}

				switch verdict.Decision {
				case cli.DecisionConfirm:
					if _, err := s.detector.Pending.Confirm(ctx, item.ID, verdict.Category); err != nil {
						return err
					}
					confirmed++
				case cli.DecisionDismiss:
					if err := s.detector.Pending.Dismiss(ctx, item.ID); err != nil {
						return err
					}
					dismissed++
				case cli.DecisionSkip:
				case cli.DecisionQuit:
					break review
				}
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Confirmed %d, dismissed %d.", confirmed, dismissed)))
			return nil
		},
	}
}
