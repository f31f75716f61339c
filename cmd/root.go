// Package cmd implements the CLI command structure for dayplan.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/user/dayplan/internal/config"
	"github.com/user/dayplan/internal/history"
	"github.com/user/dayplan/internal/plan"
	"github.com/user/dayplan/internal/shell"
	"github.com/user/dayplan/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the dayplan CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("dayplan", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "shell" as default
	subcommand := "shell"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		// Check if it looks like a subcommand (doesn't start with -)
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}

	// Execute the subcommand
	switch subcommand {
	case "shell":
		return shellCommand(ctx, cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "history":
		return historyCommand(cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		// If it's not a recognized command, it might be a planner file path
		// Check if it's an existing file
		if fi, err := os.Stat(subcommand); err == nil && !fi.IsDir() {
			cfg.DataFile = subcommand
			return shellCommand(ctx, cfg, remainingArgs)
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// shellCommand opens the interactive planner prompt, the default command.
func shellCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dayplan shell", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		cfg.DataFile = remaining[0]
	}

	store := plan.New(cfg.DataFile)
	if err := store.Load(); err != nil {
		fmt.Println("Error loading planner data. Starting with empty planner.")
	}

	var log *history.SessionLog
	if cfg.History {
		l, err := history.NewSessionLog(cfg.HistoryDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
		} else {
			log = l
			defer log.Close()
		}
	}

	return shell.New(store, log, os.Stdin, os.Stdout).Run(ctx)
}

// tuiCommand launches the read-only viewer.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dayplan tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	dataPath := cfg.DataFile
	if len(remaining) == 1 {
		dataPath = remaining[0]
	}

	return ui.RunTUI(ctx, dataPath)
}

// doctorCommand checks the state directory, planner file, and history
// setup. The schema check is stricter than the shell's loader: a file
// flagged here may still open, with bad records reset.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dayplan doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	dataPath := cfg.DataFile
	if len(remaining) == 1 {
		dataPath = remaining[0]
	}

	fmt.Println("Dayplan Doctor")
	fmt.Println("==============")
	fmt.Println()

	allOK := true

	// Check state directory
	fmt.Printf("State directory: %s\n", cfg.StateDir)
	if info, err := os.Stat(cfg.StateDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (created on first save)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if !info.IsDir() {
		fmt.Println("  ❌ Error: path is not a directory")
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	// Check planner file
	fmt.Printf("Planner file: %s\n", dataPath)
	if info, err := os.Stat(dataPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (created on first save)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if info.IsDir() {
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
		data, readErr := os.ReadFile(dataPath)
		if readErr != nil {
			fmt.Printf("  ❌ Read error: %v\n", readErr)
			allOK = false
		} else {
			result := plan.ValidateData(data)
			if result.Valid {
				fmt.Println("  ✅ Valid")
			} else {
				fmt.Println("  ❌ Validation failed:")
				for _, e := range result.Errors {
					fmt.Printf("     - %v\n", e)
				}
				allOK = false
			}
			if *verbose {
				describePlanner(dataPath)
			}
		}
	}
	fmt.Println()

	// Check history directory
	fmt.Printf("History directory: %s\n", cfg.HistoryDir)
	if !cfg.History {
		fmt.Println("  ⚠️  History disabled")
	} else if _, err := os.Stat(cfg.HistoryDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (created on first session)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else {
		fmt.Println("  ✅ OK")
		if *verbose {
			if latest, err := history.FindLatest(cfg.HistoryDir); err == nil && latest != "" {
				fmt.Printf("  Latest session: %s\n", latest)
			}
		}
	}
	fmt.Println()

	// Overall status
	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. Dayplan may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// describePlanner prints per-day task counts through the tolerant loader.
func describePlanner(dataPath string) {
	store := plan.New(dataPath)
	if err := store.Load(); err != nil {
		fmt.Printf("  ⚠️  Loader: %v\n", err)
		return
	}
	fmt.Printf("  Days: %d  Tasks: %d\n", len(store.Dates()), store.Len())
	for _, day := range store.Dates() {
		date, err := plan.ParseDate(day)
		if err != nil {
			continue
		}
		fmt.Printf("    - %s: %d tasks\n", day, len(store.Tasks(date)))
	}
}

// historyCommand tails the latest session history file.
func historyCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dayplan history", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the history (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the history (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logPath, err := history.FindLatest(cfg.HistoryDir)
	if err != nil {
		return fmt.Errorf("finding latest history: %w", err)
	}

	if logPath == "" {
		fmt.Println("No history files found.")
		return nil
	}

	fmt.Printf("Tailing: %s\n", logPath)
	if *follow {
		fmt.Println("(Ctrl+C to stop)")
	}
	fmt.Println()

	return history.Tail(os.Stdout, logPath, *n, *follow)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("dayplan version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Dayplan - A daily task planner for your terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  dayplan [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  shell [file]   Open the interactive planner (default command)")
	fmt.Fprintln(w, "  tui [file]     Launch the read-only terminal viewer")
	fmt.Fprintln(w, "  doctor [file]  Check the state directory and planner file")
	fmt.Fprintln(w, "  history        Tail the latest session history")
	fmt.Fprintln(w, "  version        Show version information")
	fmt.Fprintln(w, "  help           Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options (use with 'doctor' command):")
	fmt.Fprintln(w, "  -v    Verbose output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "History Options (use with 'history' command):")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the history (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}
