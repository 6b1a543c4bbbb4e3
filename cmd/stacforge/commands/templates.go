package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/eokit/stacforge/stac"
)

// TemplatesCmd lists the registered rendering templates.
var TemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List registered rendering templates",
	Run: func(cmd *cobra.Command, args []string) {
		items := make([]pterm.BulletListItem, 0)
		for _, id := range stac.Templates() {
			items = append(items, pterm.BulletListItem{Level: 0, Text: id})
		}
		_ = pterm.DefaultBulletList.WithItems(items).Render()
	},
}
