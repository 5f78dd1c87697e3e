package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/funvibe/noisec/internal/analyzer"
	"github.com/funvibe/noisec/internal/config"
	"github.com/funvibe/noisec/internal/modules"
	"github.com/funvibe/noisec/internal/pipeline"
	"github.com/funvibe/noisec/internal/report"
)

// Version can be set at build time using: -ldflags "-X main.Version=v1.2.3"
var Version = "dev"

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  %[1]s check [-v] [-format text|json|yaml] [-sqlite path] [-Werror] <dir>
  %[1]s dump [-v] <dir> <module vid>
  %[1]s version
`, os.Args[0])
}

// loadConfig finds noisec.yaml from dir upwards, or falls back to defaults
// rooted at dir.
func loadConfig(dir string) (*config.Config, error) {
	path, err := config.FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Default(dir), nil
	}
	return config.LoadConfig(path)
}

func handleVersion() bool {
	if len(os.Args) < 2 || (os.Args[1] != "version" && os.Args[1] != "-version" && os.Args[1] != "--version") {
		return false
	}
	fmt.Printf("noisec %s\n", Version)
	return true
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	if os.Args[1] != "-help" && os.Args[1] != "--help" && os.Args[1] != "help" && os.Args[1] != "-h" {
		return false
	}
	usage(os.Stdout)
	return true
}

func handleCheck() bool {
	if os.Args[1] != "check" {
		return false
	}
	if code := runCheck(os.Args[2:], os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
	return true
}

// runCheck runs `check` with args and returns the process exit code.
func runCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "log progress")
	format := fs.String("format", "", "report format: text, json or yaml")
	sqlitePath := fs.String("sqlite", "", "record the run in this SQLite database")
	werror := fs.Bool("Werror", false, "treat warnings as errors")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	if *format != "" {
		cfg.Report.Format = *format
	}
	if *sqlitePath != "" {
		cfg.Report.SQLite = *sqlitePath
	}
	if *werror {
		cfg.WarningsAsErrors = true
	}

	ctx := pipeline.NewContext(cfg)
	ctx.Verbose = *verbose
	p := pipeline.New(
		&modules.LoaderProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&report.ReportProcessor{Out: stdout, StartedAt: time.Now()},
	)
	ctx = p.Run(ctx)

	if ctx.Err != nil && cfg.Report.Format != config.FormatText {
		fmt.Fprintf(stderr, "Error: %s\n", ctx.Err)
	}
	if ctx.Failed() {
		return 1
	}
	return 0
}

func handleDump() bool {
	if os.Args[1] != "dump" {
		return false
	}

	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	verbose := fs.Bool("v", false, "log progress")
	fs.Parse(os.Args[2:])
	if fs.NArg() != 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := loadConfig(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	ctx := pipeline.NewContext(cfg)
	ctx.Verbose = *verbose
	sap := &analyzer.SemanticAnalyzerProcessor{}
	ctx = pipeline.New(&modules.LoaderProcessor{}, sap).Run(ctx)
	if ctx.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", ctx.Err)
		os.Exit(1)
	}

	if err := dumpModule(os.Stdout, sap.Context, fs.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	for _, e := range ctx.Errors {
		fmt.Fprintln(os.Stderr, e.Error())
	}
	return true
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if os.Getenv("NOISEC_TEST_MODE") == "1" {
		config.IsTestMode = true
	}

	if handleHelp() || handleVersion() || handleCheck() || handleDump() {
		return
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
	usage(os.Stderr)
	os.Exit(2)
}
