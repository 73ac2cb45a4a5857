package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/mabhi256/vardig/internal/config"
	"github.com/mabhi256/vardig/pkg/vardig"
	"github.com/mabhi256/vardig/utils"
	"github.com/spf13/cobra"
)

var (
	configFile string
	cfg        *config.Config

	flagDebug     bool
	flagOutput    string
	flagOutputDir string
	flagProtected bool
	flagPrivate   bool
	flagNesting   int
	flagSource    bool
)

var rootCmd = &cobra.Command{
	Use:   "vardig",
	Short: "Inspect Go values as browsable trees",
	Long: `vardig walks arbitrary values, follows pointers, detects cycles and renders the result
as a terminal tree, an interactive browser or a single-file HTML report.`,
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}

		if cmd.Name() == "install" || cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if !isShellSupported() || !isInPath() {
			return nil // Skip auto-setup for unsupported shells and dev builds
		}

		if !completionsExist() {
			fmt.Println("🔧 First run detected, setting up vardig...")
			if installCompletions(cmd.Root()) == nil {
				fmt.Println("✅ Shell completions installed")
				fmt.Println("💡 Restart your shell to enable tab completion")
			} else {
				fmt.Println("⚠️  Auto-setup failed. Run 'vardig install' to try again.")
			}
		}
		return nil
	},
}

// loadConfig reads the config file and applies the flags the user set
func loadConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		loaded.Debug = flagDebug
	}
	if flags.Changed("output") {
		loaded.Output = flagOutput
	}
	if flags.Changed("out-dir") {
		loaded.OutputDir = flagOutputDir
	}
	if flags.Changed("protected") {
		loaded.AnalyseProtected = flagProtected
		loaded.AnalyseProtectedMethods = flagProtected
	}
	if flags.Changed("private") {
		loaded.AnalysePrivate = flagPrivate
		loaded.AnalysePrivateMethods = flagPrivate
	}
	if flags.Changed("max-nesting") {
		loaded.MaxNesting = flagNesting
	}
	if flags.Changed("source") {
		loaded.LoadSource = flagSource
	}

	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// newDumper creates a Dumper writing to the command's output
func newDumper(cmd *cobra.Command) (*vardig.Dumper, error) {
	return vardig.New(cfg, vardig.WithOutput(cmd.OutOrStdout()))
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install shell completions",
	Run: func(cmd *cobra.Command, args []string) {
		if !isInPath() {
			printPathInstructions()
			return
		}

		if !isShellSupported() {
			fmt.Printf("❌ Shell completion not supported for: %s\n", detectShell())
			fmt.Println("Supported shells: bash, zsh, fish, powershell")
			return
		}

		if completionsExist() {
			fmt.Println("✅ Already configured!")
			return
		}

		fmt.Println("📦 Installing completions...")
		if err := installCompletions(cmd.Root()); err != nil {
			fmt.Printf("❌ Failed: %v\n", err)
		} else {
			fmt.Println("✅ Done! Restart your shell to enable tab completion.")
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

func completionsExist() bool {
	home, _ := os.UserHomeDir()

	paths := map[string]string{
		"bash":       filepath.Join(home, ".local/share/bash-completion/completions/vardig"),
		"zsh":        filepath.Join(home, ".zsh/completions/_vardig"),
		"fish":       filepath.Join(home, ".config/fish/completions/vardig.fish"),
		"powershell": filepath.Join(home, "vardig_completion.ps1"),
	}

	path := paths[detectShell()]
	_, err := os.Stat(path)
	return err == nil
}

func isShellSupported() bool {
	shell := detectShell()
	return shell == "bash" || shell == "zsh" || shell == "fish" || shell == "powershell"
}

func detectShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}

	shell := filepath.Base(os.Getenv("SHELL"))
	if shell == "" {
		return "bash"
	}
	return shell
}

type completionConfig struct {
	dir         string
	file        string
	genFunc     func(io.Writer) error
	activateCmd string
}

func installCompletions(rootCmd *cobra.Command) error {
	home, _ := os.UserHomeDir()
	shell := detectShell()

	configs := map[string]completionConfig{
		"bash": {
			dir:     filepath.Join(home, ".local/share/bash-completion/completions"),
			file:    "vardig",
			genFunc: rootCmd.GenBashCompletion,
			activateCmd: fmt.Sprintf("source %s",
				filepath.Join(home, ".local/share/bash-completion/completions/vardig")),
		},
		"zsh": {
			dir:     filepath.Join(home, ".zsh/completions"),
			file:    "_vardig",
			genFunc: rootCmd.GenZshCompletion,
			activateCmd: fmt.Sprintf("fpath=(%s $fpath) && autoload -U compinit && compinit",
				filepath.Join(home, ".zsh/completions")),
		},
		"fish": {
			dir:         filepath.Join(home, ".config/fish/completions"),
			file:        "vardig.fish",
			genFunc:     func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
			activateCmd: "complete --do-complete=vardig", // Trigger fish to reload completions
		},
		"powershell": {
			dir:     home,
			file:    "vardig_completion.ps1",
			genFunc: rootCmd.GenPowerShellCompletionWithDesc,
			activateCmd: fmt.Sprintf(". %s",
				filepath.Join(home, "vardig_completion.ps1")),
		},
	}

	completion, ok := configs[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s", shell)
	}

	os.MkdirAll(completion.dir, 0755)

	file, err := os.Create(filepath.Join(completion.dir, completion.file))
	if err != nil {
		return err
	}
	defer file.Close()

	if err := completion.genFunc(file); err != nil {
		return err
	}

	// Print activation command for immediate use
	fmt.Printf("🔄 Running this command to enable auto-completions:\n")
	fmt.Printf("   %s\n", completion.activateCmd)

	return nil
}

func isInPath() bool {
	execPath, err := os.Executable()
	if err != nil {
		return false
	}

	pathEnv := os.Getenv("PATH")
	paths := strings.Split(pathEnv, string(os.PathListSeparator))
	execDir := filepath.Dir(execPath)

	return slices.Contains(paths, execDir)
}

func printPathInstructions() {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	fmt.Printf("❌ vardig not in PATH. Binary location: %s\n\n", execPath)

	if runtime.GOOS == "windows" {
		fmt.Printf("Add to PATH: %s\n", execDir)
	} else {
		fmt.Printf("Add to shell profile: export PATH=\"%s:$PATH\"\n", execDir)
		fmt.Printf("Or copy to: /usr/local/bin\n")
	}
}

func init() {
	rootCmd.AddCommand(installCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "YAML config file")
	pf.BoolVar(&flagDebug, "debug", false, "Write a JSON debug log")
	pf.StringVarP(&flagOutput, "output", "o", config.OutputAuto, "Output format (auto, cli, tui, html)")
	pf.StringVar(&flagOutputDir, "out-dir", "", "Directory for HTML reports")
	pf.BoolVar(&flagProtected, "protected", false, "Show promoted unexported fields and methods")
	pf.BoolVar(&flagPrivate, "private", false, "Show unexported fields and methods")
	pf.IntVar(&flagNesting, "max-nesting", 5, "Maximum nesting depth")
	pf.BoolVar(&flagSource, "source", false, "Read doc comments and constants from source")

	rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.ValidOutputs, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.RegisterFlagCompletionFunc("config", utils.CompleteFilesByExtension([]string{".yaml", ".yml"}))
}
