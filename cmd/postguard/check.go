package main

import (
	"encoding/json"
	"fmt"

	"github.com/matrix-org/postguard/enhance"
	"github.com/matrix-org/postguard/pipeline"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Check text and print what a user would see",
		Long: `Run text through the moderation pipeline. The text is read from the arguments,
or from stdin when none are given.

Example:
  postguard check "You are a stupid person"
  echo "I will kill him" | postguard check --trace`,
		RunE: runCheck,
	}
	cmd.Flags().Bool("trace", false, "print the full diagnostic trace as JSON")
	cmd.Flags().Bool("plain", false, "skip display enhancements (links, emoji, markup)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	var enhancer enhance.Enhancer = enhance.NewDefault(cnf.LinkDenyList)
	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		enhancer = &enhance.None{}
	}
	res := pipeline.New(manager.Tokenizer(), enhancer).Run(text)

	out := cmd.OutOrStdout()
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		b, err := json.MarshalIndent(res.Trace, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}

	_, _ = fmt.Fprintln(out, res.Text)
	for _, w := range res.Warnings {
		_, _ = fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, e := range res.Enhancements {
		_, _ = fmt.Fprintf(out, "enhancement: %s\n", e)
	}
	return nil
}
