package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qvbps/go-flow-classes/internal/config"
	"github.com/qvbps/go-flow-classes/internal/log"
	"github.com/qvbps/go-flow-classes/pkg/blocks"
	"github.com/qvbps/go-flow-classes/pkg/bundle"
	"github.com/qvbps/go-flow-classes/pkg/cache"
)

const snapshotFileName = "analyses.msgpack"

// bundlesCmd represents the bundles command.
var bundlesCmd = &cobra.Command{
	Use:   "bundles <file> <function>",
	Short: "Report connectivity bundles for a function",
	Long: `Extracts the basic blocks of a function, records the control-flow edges
between them, and prints the connectivity bundles: groups of blocks linked by
one or more jumps, directly or transitively, ignoring edge direction.

Results are cached per file modification time under the configured cache
directory.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		functionName := args[1]

		cfg, logger, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		info, err := os.Stat(filePath)
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s", filePath)
		}

		analysis, err := analyzeWithCache(cfg, logger, filePath, functionName, info)
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(analysis, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printBundles(analysis)
		return nil
	},
}

// analyzeWithCache returns the cached analysis for the function if the file
// is unchanged, otherwise extracts, bundles, and persists a fresh one.
func analyzeWithCache(cfg *config.Config, logger *log.Logger, filePath, functionName string, info os.FileInfo) (*bundle.Analysis, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}
	key := cache.Key(absPath, functionName, info.ModTime())

	c := cache.New(cfg.CacheMaxEntries)
	snapshotPath := filepath.Join(cfg.CacheDir, snapshotFileName)
	if f, err := os.Open(snapshotPath); err == nil {
		if err := c.Load(f); err != nil {
			logger.Warn("ignoring unreadable cache snapshot", "path", snapshotPath, "error", err)
			c.Clear()
		}
		f.Close()
	}

	if analysis, ok := c.Get(key); ok {
		logger.Debug("cache hit", "key", key)
		return analysis, nil
	}
	logger.Debug("cache miss", "key", key)

	fb, err := blocks.Extract(filePath, functionName)
	if err != nil {
		return nil, fmt.Errorf("extracting blocks: %w", err)
	}
	analysis, err := bundle.Build(fb)
	if err != nil {
		return nil, fmt.Errorf("building bundles: %w", err)
	}

	c.Set(key, analysis)
	if err := saveSnapshot(c, cfg.CacheDir, snapshotPath); err != nil {
		// A broken cache is an inconvenience, not a failure.
		logger.Warn("saving cache snapshot failed", "error", err)
	}
	return analysis, nil
}

func saveSnapshot(c *cache.Cache, dir, path string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Save(f)
}

// printBundles prints an analysis in human-readable form.
func printBundles(a *bundle.Analysis) {
	fmt.Printf("=== Bundles for function: %s ===\n", a.FunctionName)
	fmt.Printf("Blocks: %d  Edges: %d  Bundles: %d\n", len(a.Blocks), len(a.Edges), a.ClassCount)
	for _, b := range a.Bundles {
		marker := ""
		if b.ContainsEntry {
			marker = " (entry)"
		}
		fmt.Printf("\nBundle %d%s: %s\n", b.ID, marker, strings.Join(b.BlockIDs, ", "))
	}
}

func init() {
	bundlesCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(bundlesCmd)
}
