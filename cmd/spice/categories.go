package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-sms/internal/category"
	"github.com/Veraticus/spice-sms/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Inspect and teach the category classifier",
		Long: `Categories come from custom rules, the built-in merchant keyword table,
and descriptions you have taught the classifier.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(predictCategoryCmd())
	cmd.AddCommand(learnCategoryCmd())
	cmd.AddCommand(suggestCategoryCmd())
	cmd.AddCommand(categoryStatsCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in categories and their keywords",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(category.Table)+1)
			for _, entry := range category.Table {
				rows = append(rows, []string{entry.Category, strings.Join(entry.Keywords, ", ")})
			}
			rows = append(rows, []string{category.Other, "(fallback)"})

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Category", "Keywords"}, rows))
			return nil
		},
	}
}

func predictCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict <description>",
		Short: "Show the category the classifier would pick",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			p := s.detector.Classifier.Predict(strings.Join(args, " "), 0)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cli.BoldStyle.Render(p.Category), cli.SubtleStyle.Render(fmt.Sprintf("(%.0f%%)", p.Confidence*100)))
			return nil
		},
	}
}

func learnCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "learn <description> <category>",
		Short:   "Teach the classifier a description's category",
		Example: `  spice categories learn "Sharma General Store" Groceries`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.detector.Classifier.Learn(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Learned %q → %s", args[0], args[1])))
			return nil
		},
	}
}

func suggestCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <description>",
		Short: "Rank learned categories for an unseen description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			suggestions := s.detector.Classifier.Suggest(strings.Join(args, " "), limit)
			if len(suggestions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Teach at least two categories before asking for suggestions."))
				return nil
			}

			rows := make([][]string, 0, len(suggestions))
			for i, p := range suggestions {
				rows = append(rows, []string{strconv.Itoa(i + 1), p.Category, fmt.Sprintf("%.2f", p.Confidence)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"#", "Category", "Score"}, rows))
			return nil
		},
	}

	cmd.Flags().Int("limit", 3, "number of suggestions")
	return cmd
}

func categoryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how often each category has been taught",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			m := s.detector.Classifier.Model()
			if len(m.Frequencies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing learned yet."))
				return nil
			}

			names := make([]string, 0, len(m.Frequencies))
			for name := range m.Frequencies {
				names = append(names, name)
			}
			sort.Slice(names, func(i, j int) bool {
				if m.Frequencies[names[i]] != m.Frequencies[names[j]] {
					return m.Frequencies[names[i]] > m.Frequencies[names[j]]
				}
				return names[i] < names[j]
			})

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name, strconv.Itoa(m.Frequencies[name])})
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Category", "Times learned"}, rows))
			fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(fmt.Sprintf("%d descriptions remembered", len(m.Mappings))))
			return nil
		},
	}
}
