// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/template"

	"github.com/H0llyW00dzZ/mcp-demo-server/src/cli"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/logger"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/mcp-server/templates"
	"github.com/spf13/cobra"
)

// cliHelpData holds the data used to populate the CLI help template.
type cliHelpData struct {
	// DisplayName: Human name of the server
	DisplayName string
	// ExeName: Executable name for command examples
	ExeName string
	// InstructionsFlagName: Dynamic instructions flag name
	InstructionsFlagName string
	// ConfigFlagName: Dynamic config flag name
	ConfigFlagName string
	// ConfigEnv: Environment variable naming the config file
	ConfigEnv string
}

// CLIFramework integrates Cobra CLI with MCP server capabilities.
//
// Key features:
//   - Dynamic executable naming based on actual binary path (not hardcoded)
//   - [Gopls-style] --instructions flag printing the instructions sent to clients
//   - Configuration file support via --config flag or MCP_DEMO_CONFIG_FILE environment variable
//   - Stdio server when no subcommand is given, HTTP server with serve
//   - In-process call and tools subcommands
//   - Graceful shutdown on SIGINT and SIGTERM
//
// [Gopls-style]: https://tip.golang.org/gopls/features/mcp#instructions-to-the-model
type CLIFramework struct {
	configFile string
	embed      templates.EmbedFS
	version    string
	tools      []ToolDefinition
	resources  []ResourceDefinition
	defaults   bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewCLIFramework creates a new CLI framework instance.
//
// Parameters:
//   - configFile: Default configuration file. Can be overridden via --config;
//     pass empty string to fall back to MCP_DEMO_CONFIG_FILE or defaults.
//   - deps: Version, embedded templates and any tools or resources beyond the
//     built-in ones (enabled with deps.Defaults).
//
// Configuration loading is deferred until a command runs so that flags apply.
func NewCLIFramework(configFile string, deps ServerDependencies) *CLIFramework {
	embed := deps.Embed
	if embed == nil {
		embed = templates.MagicEmbed
	}
	return &CLIFramework{
		configFile: configFile,
		embed:      embed,
		version:    deps.Version,
		tools:      deps.Tools,
		resources:  deps.Resources,
		defaults:   deps.Defaults,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// SetIO replaces the process streams used by the stdio server and the logger.
func (cf *CLIFramework) SetIO(stdin io.Reader, stdout, stderr io.Writer) {
	cf.stdin = stdin
	cf.stdout = stdout
	cf.stderr = stderr
}

// BuildRootCommand creates the root Cobra command.
//
// Command behavior:
//   - With --instructions: prints the rendered instructions and exits
//   - Without a subcommand: serves JSON-RPC over stdin/stdout
//   - serve, call, tools: see their own help
//
// Returns:
//   - *cobra.Command: Root command with subcommands attached
//   - error: If the embedded help template cannot be rendered
func (cf *CLIFramework) BuildRootCommand() (*cobra.Command, error) {
	exeName := posix.GetExecutableName()

	rootCmd := &cobra.Command{
		Use:          exeName,
		Short:        "MCP demo server speaking JSON-RPC 2.0 over stdio or HTTP",
		Version:      cf.version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	rootCmd.SetIn(cf.stdin)
	rootCmd.SetOut(cf.stdout)
	rootCmd.SetErr(cf.stderr)

	var showInstructions bool
	rootCmd.Flags().BoolVar(&showInstructions, "instructions", false, "print the instructions sent to MCP clients")
	rootCmd.PersistentFlags().StringVar(&cf.configFile, "config", cf.configFile, "path to MCP server configuration file")

	longDesc, examples, err := cf.loadAndExecuteCLIHelpTemplate(exeName, rootCmd)
	if err != nil {
		return nil, err
	}
	rootCmd.Long = longDesc
	rootCmd.Example = examples

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if showInstructions {
			return cf.printInstructions(cmd.OutOrStdout())
		}
		return cf.startStdioServer(cmd.Context())
	}

	rootCmd.AddCommand(
		cf.newServeCommand(),
		cli.NewCallCommand(cf.dispatcherFactory),
		cli.NewToolsCommand(cf.catalogFactory),
	)

	return rootCmd, nil
}

func (cf *CLIFramework) loadAndExecuteCLIHelpTemplate(exeName string, rootCmd *cobra.Command) (longDesc, examples string, err error) {
	templateBytes, err := cf.embed.ReadFile(templates.CLIHelpFile)
	if err != nil {
		return "", "", fmt.Errorf("failed to load CLI help template: %w", err)
	}

	data := cliHelpData{
		DisplayName:          defaultDisplayName,
		ExeName:              exeName,
		InstructionsFlagName: "--instructions",
		ConfigFlagName:       "--config",
		ConfigEnv:            EnvConfigFile,
	}
	if f := rootCmd.Flags().Lookup("instructions"); f != nil {
		data.InstructionsFlagName = "--" + f.Name
	}
	if f := rootCmd.PersistentFlags().Lookup("config"); f != nil {
		data.ConfigFlagName = "--" + f.Name
	}

	tmpl, err := template.New("cli_help").Parse(string(templateBytes))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse CLI help template: %w", err)
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", "", fmt.Errorf("failed to execute CLI help template: %w", err)
	}

	return parseTemplateResult(result.String())
}

// parseTemplateResult splits the rendered help at the "## Examples" heading.
func parseTemplateResult(templateResult string) (longDesc, examples string, err error) {
	const examplesMarker = "## Examples"

	before, after, found := strings.Cut(templateResult, examplesMarker)
	if !found {
		return "", "", fmt.Errorf("CLI help template has invalid format - missing '%s' section", examplesMarker)
	}

	return strings.TrimSpace(before), strings.TrimRight(strings.TrimLeft(after, "\r\n"), " \t\r\n"), nil
}

// newLogger returns the server logger for config, writing JSON lines to stderr.
func (cf *CLIFramework) newLogger(config *Config) logger.Logger {
	return logger.NewMCPLogger(cf.stderr, config.Log.Silent)
}

// buildDispatcher loads the configuration and builds the dispatcher.
func (cf *CLIFramework) buildDispatcher() (*Dispatcher, logger.Logger, error) {
	config, err := loadConfig(cf.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l := cf.newLogger(config)

	builder := NewServerBuilder().
		WithConfig(config).
		WithTools(cf.tools...).
		WithResources(cf.resources...).
		WithLogger(l)
	if cf.defaults {
		builder = builder.WithDefaults()
	}

	d, err := builder.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build MCP server: %w", err)
	}
	return d, l, nil
}

func (cf *CLIFramework) dispatcherFactory() (cli.Dispatcher, error) {
	d, _, err := cf.buildDispatcher()
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (cf *CLIFramework) catalogFactory() (cli.Catalog, error) {
	d, _, err := cf.buildDispatcher()
	if err != nil {
		return nil, err
	}
	return d.Registry(), nil
}

func (cf *CLIFramework) printInstructions(w io.Writer) error {
	d, _, err := cf.buildDispatcher()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, d.Instructions())
	return err
}

// signalContext derives a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func (cf *CLIFramework) startStdioServer(parent context.Context) error {
	d, l, err := cf.buildDispatcher()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(parent)
	defer stop()

	l.Printf("%s %s serving on stdio", d.Config().Server.DisplayName, cf.version)

	// Only user-initiated cancellation counts as a clean shutdown.
	if err := ServeStdio(ctx, d, cf.stdin, cf.stdout, l); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (cf *CLIFramework) newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON-RPC endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, l, err := cf.buildDispatcher()
			if err != nil {
				return err
			}

			listenAddr := d.Config().HTTP.Address
			if addr != "" {
				listenAddr = addr
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			return ListenAndServe(ctx, d, l, listenAddr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.address and "+EnvHTTPAddr)
	return cmd
}
