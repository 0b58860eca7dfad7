package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/josehu07/codetective/code_group"
	"github.com/josehu07/codetective/config"
	"github.com/josehu07/codetective/constants/lipgloss"
	"github.com/josehu07/codetective/token_management"
	contracts_token "github.com/josehu07/codetective/token_management/contracts"
)

// RootDependencies holds the dependencies shared by all subcommands.
type RootDependencies struct {
	Cwd             string
	Config          *config.Config
	TokenManagement contracts_token.ITokenManagement
	CodeGroup       *code_group.CodeGroup
}

// rootCmd: codetective
var rootCmd = &cobra.Command{
	Use:   "codetective",
	Short: "Detect whether code is AI-authored, right from your terminal.",
	Long: `Codetective ingests code from heterogeneous sources (pasted text, uploaded
files or archives, a raw URL, or an entire GitHub repository) and runs each
file through an AI provider to estimate the likelihood that it was written by
an AI, with per-file progress, retry, and JSON export of the results.`,
	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Println(config.DefaultConfig.Version)
			return
		}
		_ = cmd.Help()
	},
}

// handleRootCommand resolves the shared dependencies for a subcommand run.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render("Error getting current directory"))
		os.Exit(1)
	}

	return &RootDependencies{
		Cwd:             cwd,
		Config:          config.LoadConfigs(cmd.Root(), cwd),
		TokenManagement: token_management.NewTokenManager(),
		CodeGroup:       code_group.NewCodeGroup(),
	}
}

func init() {
	config.InitFlags(rootCmd)
}

// Execute runs the root command of the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}
