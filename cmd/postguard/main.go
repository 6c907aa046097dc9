package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/matrix-org/postguard/version"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "postguard",
		Short: "A rule-based text moderation pre-filter",
		Long: `postguard classifies short texts for spam and harmful content, masks the
offending words, and explains what it found.

Configuration is read from PG_* environment variables (and a .env file, if present).`,
		Version:      version.Revision,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("keywords", "", "keyword file to use instead of PG_KEYWORDS_FILE (implies PG_KEYWORD_SOURCE=file)")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newTokenizeCmd())
	rootCmd.AddCommand(newKeywordsCmd())
	return rootCmd
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	// Keep stdout for command output
	log.SetOutput(os.Stderr)
	log.SetPrefix("[" + version.Name + "] ")
	log.SetFlags(log.LstdFlags)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
