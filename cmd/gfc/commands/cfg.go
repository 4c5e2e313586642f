package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qvbps/go-flow-classes/pkg/blocks"
)

// cfgCmd represents the cfg command.
var cfgCmd = &cobra.Command{
	Use:   "cfg <file> <function>",
	Short: "Print raw basic blocks and edges for a function",
	Long: `Extracts the basic blocks and directed control-flow edges of a function
without bundling them. Useful for inspecting what the bundling pass sees.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		functionName := args[1]

		info, err := os.Stat(filePath)
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s", filePath)
		}

		fb, err := blocks.Extract(filePath, functionName)
		if err != nil {
			return fmt.Errorf("extracting blocks: %w", err)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(fb, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printBlocks(fb)
		return nil
	},
}

// printBlocks prints block and edge information in human-readable form.
func printBlocks(fb *blocks.FunctionBlocks) {
	fmt.Printf("=== Blocks for function: %s ===\n", fb.FunctionName)
	fmt.Printf("Entry: %s  Exit: %s\n", fb.EntryID, fb.ExitID)

	fmt.Printf("\nBlocks (%d):\n", len(fb.Blocks))
	for _, blk := range fb.Blocks {
		fmt.Printf("  %s (%s, lines %d-%d)\n", blk.ID, blk.Kind, blk.StartLine, blk.EndLine)
		for _, stmt := range blk.Statements {
			fmt.Printf("    %s\n", stmt)
		}
	}

	fmt.Printf("\nEdges (%d):\n", len(fb.Edges))
	for _, edge := range fb.Edges {
		fmt.Printf("  %s --%s--> %s\n", edge.Source, edge.Kind, edge.Target)
	}
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(cfgCmd)
}
