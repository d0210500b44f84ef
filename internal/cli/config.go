package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yildizm/docrag/internal/config"
	"github.com/yildizm/docrag/internal/emoji"
)

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage docrag configuration",
		Long: `Manage docrag configuration files and settings.

The config command provides subcommands for initializing, viewing,
validating, and locating configuration files.`,
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

// newConfigInitCommand creates the config init subcommand
func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long:  `Write a documented configuration file with the default values.`,
		Example: `  # Create config in current directory
  docrag config init

  # Create config at specific path
  docrag config init --path ~/.config/docrag/config.yaml

  # Overwrite existing config
  docrag config init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = ".docrag.yaml"
			}
			path := config.ExpandPath(outputPath)

			if err := config.WriteSample(path, force); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%sConfiguration file created at: %s\n", emoji.Prefix("success"), path)
			fmt.Fprintf(out, "%sEdit it to change the source directory, embedding provider or index location\n", emoji.Prefix("doc"))
			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "path", "p", "", "output path for config file (default: .docrag.yaml)")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current effective configuration after loading from all sources.

Shows the merged configuration from defaults, config files, and
environment variable overrides. API keys are redacted.`,
		Example: `  # Show config in YAML format
  docrag config show

  # Show config in JSON format
  docrag config show --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := GetGlobalConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				redacted := *cfg
				if redacted.Embedding.APIKey != "" {
					redacted.Embedding.APIKey = "***"
				}
				data, err := json.MarshalIndent(&redacted, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config to JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := cfg.Marshal()
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
				fmt.Fprint(out, string(data))
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}

			return nil
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")

	return showCmd
}

// newConfigValidateCommand creates the config validate subcommand
func newConfigValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate a docrag configuration file for syntax and semantic errors.

Checks the configuration file for:
- Valid YAML or TOML syntax
- Supported embedding providers and output formats
- Chunk overlap smaller than the chunk size
- Positive batch sizes, concurrency and top-k`,
		Example: `  # Validate current config
  docrag config validate

  # Validate specific config file
  docrag config validate --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := GetGlobalConfig()
			if err != nil {
				fmt.Fprintf(out, "%sConfiguration validation failed:\n", emoji.Prefix("error"))
				fmt.Fprintf(out, "   %v\n", err)
				return err
			}

			fmt.Fprintf(out, "%sConfiguration is valid\n", emoji.Prefix("success"))
			fmt.Fprintln(out, "Configuration summary:")
			fmt.Fprintf(out, "   Version: %s\n", cfg.Version)
			fmt.Fprintf(out, "   Sources: %s (%d extensions)\n", cfg.Sources.Dir, len(cfg.Sources.Extensions))
			fmt.Fprintf(out, "   Chunking: size %d, overlap %d\n", cfg.Chunking.Size, cfg.Chunking.Overlap)
			fmt.Fprintf(out, "   Embedding Provider: %s\n", cfg.Embedding.Provider)
			fmt.Fprintf(out, "   Index Directory: %s\n", cfg.Index.Dir)
			fmt.Fprintf(out, "   Output Format: %s\n", cfg.Output.DefaultFormat)

			return nil
		},
	}

	return validateCmd
}

// newConfigPathCommand creates the config path subcommand
func newConfigPathCommand() *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `Display the list of paths docrag searches for configuration files.

Shows the search order and indicates which files exist.`,
		Example: `  # Show config search paths
  docrag config path`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration file search paths (in priority order):")
			fmt.Fprintln(out)

			priority := []string{"Highest", "Medium", "Lowest"}
			for i, path := range config.GetConfigPaths() {
				exists := " (not found)"
				if fileExists(path) {
					exists = " " + emoji.Prefix("success") + "(exists)"
				}

				fmt.Fprintf(out, "  %d. %s%s\n", i+1, path, exists)
				if i < len(priority) {
					fmt.Fprintf(out, "     Priority: %s\n", priority[i])
				}
				fmt.Fprintln(out)
			}

			if currentConfig, found := config.FindConfigFile(); found {
				fmt.Fprintf(out, "Current config file: %s\n", currentConfig)
			} else {
				fmt.Fprintln(out, "No config file found, using defaults")
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "%sEnvironment variables with the DOCRAG_ prefix override file settings\n", emoji.Prefix("bulb"))
		},
	}

	return pathCmd
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
