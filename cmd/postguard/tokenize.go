package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize [text]",
		Short: "Print the tokens the classifiers see",
		Long: `Split text into categorised tokens, one per line. The text is read from the
arguments, or from stdin when none are given.`,
		RunE: runTokenize,
	}
}

func runTokenize(cmd *cobra.Command, args []string) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	cnf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	manager, closeFn, err := loadManager(cnf)
	if err != nil {
		return err
	}
	defer closeFn()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, token := range manager.Tokenizer().Tokenize(text) {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", token.Category, token.Text)
	}
	return tw.Flush()
}
