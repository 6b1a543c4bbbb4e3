package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eokit/stacforge/cmd/stacforge/commands"
	"github.com/eokit/stacforge/config"
	"github.com/eokit/stacforge/logger"
)

var rootCmd = &cobra.Command{
	Use:   "stacforge",
	Short: "stacforge - Earth observation metadata extraction and STAC rendering",
	Long: `stacforge - Extract metadata from Earth observation products and render STAC items.

stacforge classifies satellite products by naming convention, evaluates the
mapping rule table registered for the product type against the metadata
files inside the product, and renders one STAC item per scene.

Available commands:
  extract   - Process scenes into STAC items
  templates - List registered rendering templates
  version   - Show version information

Examples:
  stacforge extract ./S2A_MSIL1C_*.SAFE          # Process local products
  stacforge extract s3://eodata/Sentinel-2/...   # Process remote products
  stacforge extract --from-file scenes.txt --ndjson items.ndjson
  stacforge templates                            # Show what can be rendered`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			if _, err := config.LoadFromFile(path); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs instead of console output")
	rootCmd.PersistentFlags().String("config", "", "Path to TOML configuration file")

	rootCmd.AddCommand(commands.ExtractCmd)
	rootCmd.AddCommand(commands.TemplatesCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
