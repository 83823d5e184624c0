package terminal

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/de-tools/iam-audit/pkg/runtime/terminal/commands"
	"github.com/de-tools/iam-audit/pkg/store/records"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	sources   records.Registry
	reporter  *Reporter
	openStore commands.FindingsStoreFactory
	clock     func() time.Time
	logOutput io.Writer
	logLevel  string
	rootCmd   *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Sources records.Registry
	Output  io.Writer
	// LogOutput receives structured logs; defaults to stderr
	LogOutput io.Writer
	// OpenStore overrides the findings export backend
	OpenStore commands.FindingsStoreFactory
	// Clock overrides the audit date and report timestamp
	Clock func() time.Time
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Sources == nil {
		opts.Sources = records.NewDefaultRegistry()
	}

	cli := &CLI{
		sources:   opts.Sources,
		reporter:  NewReporter(opts.Output),
		openStore: opts.OpenStore,
		clock:     opts.Clock,
		logOutput: opts.LogOutput,
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides the command line arguments, mainly for tests
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "iam-audit",
		Short:             "Identity and access management audit tool",
		SilenceUsage:      true,
		PersistentPreRunE: cli.setupLogger,
	}

	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(commands.NewRunCmd(cli.sources, cli.reporter, cli.openStore, cli.clock))
	cmd.AddCommand(commands.NewPolicyCmd())

	return cmd
}

func (cli *CLI) setupLogger(cmd *cobra.Command, _ []string) error {
	level, err := zerolog.ParseLevel(cli.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cli.logLevel, err)
	}

	logger := zerolog.New(cli.logOutput).Level(level).With().Timestamp().Logger()
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}
