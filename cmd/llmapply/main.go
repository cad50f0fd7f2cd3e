package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/okrent/llmapply/internal/config"
	"github.com/okrent/llmapply/internal/envelope"
	"github.com/okrent/llmapply/internal/executor"
	"github.com/okrent/llmapply/internal/hashline"
	"github.com/okrent/llmapply/internal/source"
	"github.com/okrent/llmapply/internal/tui"
	"github.com/okrent/llmapply/internal/ui"
)

// Version info set by ldflags at build time
var (
	version    = "dev"
	commitHash = "dev"
)

func main() {
	os.Exit(run())
}

func run() int {
	baseDir := flag.String("base-dir", "", "directory file paths resolve against (default: config or cwd)")
	configPath := flag.String("config", "llmapply.yaml", "path to config file")
	logPath := flag.String("log", "", "log file path (empty to disable)")
	dryRun := flag.Bool("dry-run", false, "complete patches and print diffs without writing")
	jsonOut := flag.Bool("json", false, "emit the status report as JSON")
	tuiMode := flag.Bool("tui", false, "show a terminal UI while applying")
	extrude := flag.Bool("extrude", false, "print the input with the FILE_CHANGES block removed, without applying")
	contextGlobs := flag.StringSlice("context", nil, "emit FILE_CONTENT blocks for files matching these globs and exit")
	hashlinesFile := flag.String("hashlines", "", "emit the hashline listing of a file and exit")
	quiet := flag.BoolP("quiet", "q", false, "suppress informational output")
	showVersion := flag.Bool("version", false, "show version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("llmapply %s-%s\n", version, commitHash)
		return 0
	}

	writer := ui.NewWriter()
	writer.SetQuiet(*quiet)
	writer.SetJSONMode(*jsonOut)

	cfg, err := config.Load(*configPath, flag.CommandLine.Changed("config"))
	if err != nil {
		writer.Error("load config: %v", err)
		return 1
	}
	if *baseDir != "" {
		cfg.Workspace.BaseDir = *baseDir
	}
	if flag.CommandLine.Changed("log") {
		cfg.Log.Path = *logPath
	}
	if *dryRun {
		cfg.Apply.DryRun = true
	}
	if *tuiMode {
		cfg.UI.TUI = true
	}

	if *hashlinesFile != "" {
		data, err := os.ReadFile(*hashlinesFile)
		if err != nil {
			writer.Error("%v", err)
			return 1
		}
		fmt.Println(hashline.FormatHashLines(strings.TrimSuffix(string(data), "\n"), 1))
		return 0
	}

	if len(*contextGlobs) > 0 {
		out, err := envelope.BuildFilesContext(cfg.Workspace.BaseDir, *contextGlobs)
		if err != nil {
			writer.Error("%v", err)
			return 1
		}
		fmt.Print(out)
		return 0
	}

	provider := &source.Provider{FilePath: flag.Arg(0)}
	content, err := provider.GetContent()
	if err != nil {
		writer.Error("%v", err)
		return 1
	}
	if strings.TrimSpace(content) == "" {
		writer.Info("Source %s is empty. Nothing to process.", provider.Name())
		return 0
	}

	if *extrude {
		_, remainder := envelope.Extract(content, true)
		fmt.Print(remainder)
		return 0
	}

	changes, _ := envelope.Extract(content, false)
	if changes.Empty() {
		writer.Info("No <FILE_CHANGES> block found in %s.", provider.Name())
		return 0
	}

	logger, err := executor.NewLogger(cfg.Log.Path, cfg.Log.Development)
	if err != nil {
		writer.Error("initialize logger: %v", err)
		return 1
	}
	defer logger.Close()

	exec, err := executor.New(cfg.Workspace.BaseDir, executor.Options{
		DryRun: cfg.Apply.DryRun,
		Logger: logger,
	})
	if err != nil {
		writer.Error("%v", err)
		logger.Error("apply aborted", err)
		return 1
	}

	var report *executor.Report
	if cfg.UI.TUI && !*jsonOut {
		model, err := tui.Run(func() (*executor.Report, error) {
			return exec.Apply(changes), nil
		})
		if err != nil {
			writer.Error("%v", err)
			return 1
		}
		report = model.Report()
		if report == nil {
			return 1
		}
	} else {
		writer.Info("Applying %d directives from %s to %s", len(changes.Directives), provider.Name(), exec.BaseDir())
		report = exec.Apply(changes)
		writer.Report(report)
	}

	if !report.AllSucceeded() {
		return 1
	}
	return 0
}
