package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sanity-io/litter"

	"github.com/thatsimonsguy/ambient-hub/internal/config"
	"github.com/thatsimonsguy/ambient-hub/internal/journal"
	"github.com/thatsimonsguy/ambient-hub/internal/modes"
	"github.com/thatsimonsguy/ambient-hub/internal/pinctrl"
	"github.com/thatsimonsguy/ambient-hub/system/startup"
)

func main() {
	DebugCLI()
}

func DebugCLI() {
	var configFile, command, mode, dir string
	var n int
	flag.StringVar(&configFile, "config-file", "config.json", "Path to the JSON config file")
	flag.StringVar(&command, "cmd", "", "Command to run: show-config, pins, eval, journal-tail, write-assets")
	flag.StringVar(&mode, "mode", "", "Mode label for eval (weather, system, idle)")
	flag.IntVar(&n, "n", 10, "Number of rows for journal-tail")
	flag.StringVar(&dir, "dir", "assets", "Output directory for write-assets")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help || command == "" {
		fmt.Println("\nUsage of ambient-debug:")
		fmt.Println("  -config-file string\tPath to the JSON config file (default 'config.json')")
		fmt.Println("  -cmd string\tCommand to run: show-config, pins, eval, journal-tail, write-assets")
		fmt.Println("  -mode string\tMode label for eval (weather, system, idle)")
		fmt.Println("  -n int\tNumber of rows for journal-tail")
		fmt.Println("  -dir string\tOutput directory for write-assets")
		fmt.Println("  -help\tShow this help message")
		os.Exit(0)
	}

	var err error
	switch command {
	case "show-config":
		err = showConfig(configFile)
	case "pins":
		err = showPins()
	case "eval":
		if mode == "" {
			fmt.Println("Error: mode label is required")
			os.Exit(1)
		}
		err = evalMode(configFile, mode)
	case "journal-tail":
		err = tailJournal(configFile, n)
	case "write-assets":
		err = writeAssets(configFile, dir)
	default:
		fmt.Println("Invalid command")
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Command %s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func showConfig(path string) error {
	cfg := config.LoadFile(path)
	fmt.Println(litter.Sdump(cfg))
	return nil
}

func showPins() error {
	pins, err := pinctrl.ReadAllPins()
	if err != nil {
		return err
	}

	numbers := make([]int, 0, len(pins))
	for number := range pins {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	for _, number := range numbers {
		p := pins[number]
		fmt.Printf("GPIO%-3d %-3s %-3s %-3s %-3s // %s\n", number, p.Mode, p.Pull, p.Drive, p.Level, p.Comment)
	}
	return nil
}

func evalMode(path, label string) error {
	cfg := config.LoadFile(path)

	rotation, err := modes.Build(&cfg)
	if err != nil {
		return err
	}

	for _, m := range rotation {
		if m.Label != label {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.FetchTimeoutSeconds)*time.Second)
		defer cancel()

		status, err := m.Provider.Evaluate(ctx)
		if err != nil {
			return err
		}
		fmt.Println(litter.Sdump(status))
		return nil
	}
	return fmt.Errorf("mode %q is not in the configured rotation", label)
}

func tailJournal(path string, n int) error {
	cfg := config.LoadFile(path)
	if cfg.JournalFile == "" {
		return fmt.Errorf("journal_file is not configured")
	}

	store, err := journal.Open(cfg.JournalFile)
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.Tail(n)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.OK {
			fmt.Printf("%s  %-8s ok     (%3d,%3d,%3d)  %s\n",
				row.At.Format(time.RFC3339), row.Mode,
				row.Status.Color.R, row.Status.Color.G, row.Status.Color.B, row.Status.Message)
			continue
		}
		fmt.Printf("%s  %-8s error  %s\n", row.At.Format(time.RFC3339), row.Mode, row.Error)
	}
	return nil
}

func writeAssets(path, dir string) error {
	cfg := config.LoadFile(path)
	if err := startup.WriteAssets(&cfg, dir); err != nil {
		return err
	}
	fmt.Printf("Wrote boot script and systemd units to %s\n", dir)
	return nil
}
