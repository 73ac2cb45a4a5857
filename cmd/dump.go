package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mabhi256/vardig/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var dataExtensions = []string{".json", ".yaml", ".yml"}

var (
	dumpName    string
	dumpOutFile string
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file.json|file.yaml]",
	Short: "Dump the contents of a JSON or YAML file",
	Long: `Decode a JSON or YAML document and render it as a tree.

Examples:
  vardig dump config.yaml               # tree on the terminal
  vardig dump data.json -o tui          # interactive browser
  vardig dump data.json -o html --out report.html`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension(dataExtensions),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]
		if !utils.HasExtension(file, dataExtensions) {
			return fmt.Errorf("invalid data file: %s. Valid extensions: %v", file, dataExtensions)
		}
		if _, err := os.Stat(file); os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", file)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := decodeFile(args[0])
		if err != nil {
			return err
		}

		d, err := newDumper(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		name := dumpName
		if name == "" {
			name = variableName(args[0])
		}

		report := d.DumpAction(data, name, 0)
		if report == nil {
			return fmt.Errorf("dump refused, see the debug log")
		}

		if dumpOutFile != "" {
			path, err := d.WriteHTML(report, dumpOutFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vardig report written to %s\n", path)
			return nil
		}
		return d.Render(report)
	},
}

// decodeFile reads a JSON or YAML document. JSON is valid YAML, so one
// decoder serves both.
func decodeFile(path string) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var data any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return data, nil
}

// variableName turns a file name into an identifier for generated sources
func variableName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var b strings.Builder
	for i, r := range base {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "data"
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVarP(&dumpName, "name", "n", "", "Variable name used in generated sources (default: file name)")
	dumpCmd.Flags().StringVar(&dumpOutFile, "out", "", "Write an HTML report to this file")
	dumpCmd.RegisterFlagCompletionFunc("out", utils.CompleteFilesByExtension([]string{".html"}))
}
