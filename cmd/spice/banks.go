package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-sms/internal/bank"
	"github.com/Veraticus/spice-sms/internal/cli"
)

func banksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "Bank identification and bank-to-account mappings",
		Long: `Messages are tagged with the bank that sent them. Remembering a mapping
from a bank to one of your accounts lets transactions from that bank land
in the right account.`,
	}

	cmd.AddCommand(listBanksCmd())
	cmd.AddCommand(identifyBankCmd())
	cmd.AddCommand(bankMappingsCmd())
	cmd.AddCommand(rememberBankCmd())
	cmd.AddCommand(forgetBankCmd())

	return cmd
}

func listBanksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recognized institutions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(bank.Institutions))
			for _, inst := range bank.Institutions {
				rows = append(rows, []string{
					inst.Name,
					strings.Join(inst.Keywords, ", "),
					strings.Join(inst.SenderCodes, ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Bank", "Keywords", "Sender codes"}, rows))
			return nil
		},
	}
}

func identifyBankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identify <text>",
		Short: "Show which bank a message appears to come from",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, _ := cmd.Flags().GetString("sender")

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			name := s.detector.Banks.Identify(strings.Join(args, " "))
			if name == "" && sender != "" {
				name = s.detector.Banks.IdentifySender(sender)
			}
			if name == "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Bank not recognized."))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cli.BankIcon, name)
			if accountID, ok := s.detector.Mappings.Lookup(name); ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("mapped to account "+accountID))
			}
			return nil
		},
	}

	cmd.Flags().String("sender", "", "SMS sender header to fall back on")
	return cmd
}

func bankMappingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mappings",
		Short: "List remembered bank-to-account mappings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			table := s.detector.Mappings.All()
			if len(table) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No mappings yet. Use 'spice banks remember' to add one."))
				return nil
			}

			keys := make([]string, 0, len(table))
			for k := range table {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, []string{k, table[k]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Bank", "Account"}, rows))
			return nil
		},
	}
}

func rememberBankCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remember <bank> <account-id>",
		Short:   "Send a bank's transactions to an account",
		Example: `  spice banks remember "HDFC Bank" hdfc-savings`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			known := false
			for _, acc := range s.cfg.Accounts {
				if acc.ID == args[1] {
					known = true
					break
				}
			}
			if !known {
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(fmt.Sprintf("%q is not a configured account; it will be ignored until it is.", args[1])))
			}

			if err := s.detector.Mappings.Remember(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s → %s", args[0], args[1])))
			return nil
		},
	}
}

func forgetBankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <bank>",
		Short: "Remove a bank-to-account mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.detector.Mappings.Forget(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Forgot "+args[0]))
			return nil
		},
	}
}
