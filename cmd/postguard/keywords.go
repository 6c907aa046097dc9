package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/keywords"
	"github.com/matrix-org/postguard/lexicon"
	"github.com/matrix-org/postguard/storage"
	"github.com/spf13/cobra"
)

func newKeywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage keyword lists",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Check a keyword file and print how many entries each category has",
		Args:  cobra.ExactArgs(1),
		RunE:  runKeywordsValidate,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import [file]",
		Short: "Replace the keyword lists stored in Postgres with the file's lists",
		Long: `Validate a keyword file and store it in Postgres (PG_DATABASE), replacing every
stored list. Running services using PG_KEYWORD_SOURCE=postgres reload once it's stored.`,
		Args: cobra.ExactArgs(1),
		RunE: runKeywordsImport,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print the keyword lists stored in Postgres as a keyword file",
		Args:  cobra.NoArgs,
		RunE:  runKeywordsExport,
	})
	return cmd
}

func runKeywordsValidate(cmd *cobra.Command, args []string) error {
	doc, err := config.LoadKeywordFile(args[0])
	if err != nil {
		return err
	}
	lex, err := lexicon.New(doc)
	if err != nil {
		return err
	}

	counts := lex.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", name, counts[name])
	}
	return nil
}

func runKeywordsImport(cmd *cobra.Command, args []string) error {
	doc, err := config.LoadKeywordFile(args[0])
	if err != nil {
		return err
	}

	cnf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, ps, closeFn, err := connectStorage(cnf)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()
	if err = keywords.Import(ctx, db, ps, doc); err != nil {
		return fmt.Errorf("import keywords: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d keyword lists from %s\n", len(config.KeywordFieldNames), args[0])
	return nil
}

func runKeywordsExport(cmd *cobra.Command, args []string) error {
	cnf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, _, closeFn, err := connectStorage(cnf)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()
	lists, err := db.GetAllKeywordLists(ctx)
	if err != nil {
		return err
	}
	doc, err := storage.KeywordDocumentFromLists(lists)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
