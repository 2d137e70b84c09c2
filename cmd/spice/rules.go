package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-sms/internal/cli"
	"github.com/Veraticus/spice-sms/internal/extract"
	"github.com/Veraticus/spice-sms/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage custom rules",
		Long: `Custom rules override generic extraction. When a rule's pattern matches a
message, its fields win: type, category, account, bank and description.

Regex rules may capture the amount with a named group (?P<amount>...) or
in their first capture group.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(deleteRuleCmd())
	cmd.AddCommand(testRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List custom rules, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			rules := s.detector.Rules.List()
			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No rules yet. Use 'spice rules add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(rules))
			for _, r := range rules {
				kind := "text"
				if r.IsRegex {
					kind = "regex"
				}
				rows = append(rows, []string{
					r.ID,
					r.Pattern,
					kind,
					orDash(string(r.Type)),
					orDash(r.Category),
					orDash(r.BankName),
					orDash(r.AccountID),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
				[]string{"ID", "Pattern", "Kind", "Type", "Category", "Bank", "Account"}, rows))
			return nil
		},
	}
}

func addRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Add a custom rule",
		Example: `  spice rules add "NETFLIX" --category Entertainment --description Netflix
  spice rules add "salary of rs\.?\s*(?P<amount>[\d,.]+)" --regex --type income --category Income`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			isRegex, _ := cmd.Flags().GetBool("regex")
			txType, _ := cmd.Flags().GetString("type")
			cat, _ := cmd.Flags().GetString("category")
			accountID, _ := cmd.Flags().GetString("account")
			bankName, _ := cmd.Flags().GetString("bank")
			description, _ := cmd.Flags().GetString("description")

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			rule, err := s.detector.Rules.Add(cmd.Context(), model.RuleFields{
				Pattern:     args[0],
				Type:        model.TransactionType(strings.ToLower(txType)),
				Category:    cat,
				AccountID:   accountID,
				BankName:    bankName,
				Description: description,
				IsRegex:     isRegex,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Added rule "+rule.ID))
			return nil
		},
	}

	cmd.Flags().Bool("regex", false, "treat the pattern as a regular expression")
	cmd.Flags().String("type", "", "transaction type: expense or income")
	cmd.Flags().String("category", "", "category to assign")
	cmd.Flags().String("account", "", "account id to assign")
	cmd.Flags().String("bank", "", "bank name to assign")
	cmd.Flags().String("description", "", "description to assign")

	return cmd
}

func deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.detector.Rules.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted rule "+args[0]))
			return nil
		},
	}
}

func testRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <text>",
		Short: "Show which rule, if any, matches a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			text := strings.Join(args, " ")
			m, ok := s.detector.Rules.Match(text)
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, cli.FormatWarning("No rule matches."))
				return nil
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Matched %s (%s)", m.Rule.ID, m.Rule.Pattern)))
			fmt.Fprintf(out, "  amount = %s\n", extract.FormatAmount(s.detector.ParseMessage(text)))
			for name, value := range m.Named {
				fmt.Fprintf(out, "  %s = %s\n", name, value)
			}
			for i, value := range m.Groups {
				fmt.Fprintf(out, "  group %d = %s\n", i+1, value)
			}
			return nil
		},
	}
}
