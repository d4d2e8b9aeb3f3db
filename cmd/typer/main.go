package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"go-typer/console"
	"go-typer/internal/config"
	"go-typer/internal/history"
	"go-typer/internal/library"
	"go-typer/internal/source"
	"go-typer/internal/typer"
)

var (
	configDir string
	text      string
	file      string
	speed     int
	control   string
	script    string

	historyLimit int
	historyGraph bool

	importFile string
	importDir  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "typer",
		Short:        "hollywood style terminal typer",
		SilenceUsage: true,
		RunE:         runConsole,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.DefaultDir(), "config directory")
	addSessionFlags(rootCmd)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "run a timer session headless and print the revealed text",
		RunE:  runRender,
	}
	addSessionFlags(renderCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "list recorded sessions",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of sessions")
	historyCmd.Flags().BoolVar(&historyGraph, "graph", false, "plot elapsed seconds")

	addScriptCmd := &cobra.Command{
		Use:   "add-script",
		Short: "import yaml scripts into the library",
		RunE:  runAddScript,
	}
	addScriptCmd.Flags().StringVarP(&importFile, "file", "f", "", "script file")
	addScriptCmd.Flags().StringVarP(&importDir, "dir", "d", "", "directory of script files")

	rootCmd.AddCommand(renderCmd, historyCmd, addScriptCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&text, "text", "", "text to reveal")
	cmd.Flags().StringVar(&file, "file", "", "path or url of the text to reveal")
	cmd.Flags().IntVar(&speed, "speed", 0, "characters per tick")
	cmd.Flags().StringVar(&control, "control", "", "keypress or timer")
	cmd.Flags().StringVar(&script, "script", "", "library script to reveal")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.ReadOrCreate(configDir)

	if err != nil {
		return nil, err
	}

	if speed != 0 {
		cfg.Speed = speed
	}

	if control != "" {
		cfg.Control = control
	}

	if script != "" {
		cfg.Script = script
	}

	return cfg, nil
}

func loadLibrary(cfg *config.Config) (*library.Library, error) {
	if err := library.Install(cfg.DataDir()); err != nil {
		return nil, err
	}

	return library.Load(cfg.DataDir())
}

// sessionText picks the text to reveal: flags first, then the configured
// script when it was asked for explicitly.
func sessionText(cfg *config.Config, lib *library.Library, explicit bool) (string, error) {
	if text != "" || file != "" || !explicit {
		return text, nil
	}

	s, err := lib.Get(cfg.Script)

	if err != nil {
		return "", err
	}

	return s.Text, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if !cfg.Debug {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}

	f, err := tea.LogToFile(cfg.LogPath(), "typer")

	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return logger, func() { f.Close() }, nil
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()

	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)

	if err != nil {
		return err
	}
	defer closeLog()

	lib, err := loadLibrary(cfg)

	if err != nil {
		return err
	}

	sessionCfg, err := cfg.Session()

	if err != nil {
		return err
	}

	store, err := history.Open(cfg.HistoryPath())

	if err != nil {
		return err
	}
	defer store.Close()

	startText, err := sessionText(cfg, lib, cmd.Flags().Changed("script"))

	if err != nil {
		return err
	}

	model, err := console.NewModel(console.Options{
		Session:      sessionCfg,
		Text:         startText,
		File:         file,
		Library:      lib,
		Resolver:     source.NewResolver(),
		History:      store,
		Logger:       logger,
		TextColor:    cfg.TextColor,
		CursorColor:  cfg.CursorColor,
		GrantedColor: cfg.GrantedColor,
		DeniedColor:  cfg.DeniedColor,
	})

	if err != nil {
		return err
	}

	return model.Run()
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()

	if err != nil {
		return err
	}

	lib, err := loadLibrary(cfg)

	if err != nil {
		return err
	}

	sessionCfg, err := cfg.Session()

	if err != nil {
		return err
	}

	startText, err := sessionText(cfg, lib, true)

	if err != nil {
		return err
	}

	sessionCfg.Text = startText
	sessionCfg.File = file
	sessionCfg.Control = typer.Timer

	loop := typer.NewVirtualLoop()
	registry := typer.NewRegistry(loop)
	buf := typer.NewBuffer("render")

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	s, err := registry.StartResolved(ctx, buf, sessionCfg, source.NewResolver())

	if err != nil {
		return err
	}

	// an empty text never completes, so there is nothing to step
	for s.State() == typer.Running && s.Text() != "" {
		if !loop.Step() {
			break
		}
	}

	stats := s.Stats()

	fmt.Fprintln(cmd.OutOrStdout(), typer.Decode(buf.Content()))
	fmt.Fprintf(cmd.ErrOrStderr(), "%d runes in %d ticks (%s virtual)\n", stats.Runes, stats.Ticks, loop.Now())

	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()

	if err != nil {
		return err
	}

	store, err := history.Open(cfg.HistoryPath())

	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(historyLimit)

	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(records) == 0 {
		fmt.Fprintln(out, "no sessions recorded")
		return nil
	}

	if historyGraph {
		series := make([]float64, 0, len(records))

		// oldest first
		for i := len(records) - 1; i >= 0; i-- {
			series = append(series, records[i].Elapsed.Seconds())
		}

		fmt.Fprintln(out, asciigraph.Plot(series, asciigraph.Height(10), asciigraph.Caption("elapsed seconds")))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tSCRIPT\tMODE\tSPEED\tREVEALED\tTICKS\tELAPSED\tOUTCOME")

	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\t%d\t%s\t%s\n",
			r.CreatedAt.Format(time.DateTime), r.Script, r.Mode, r.Speed,
			r.Revealed, r.Runes, r.Ticks, r.Elapsed.Truncate(time.Millisecond), r.Outcome)
	}

	return w.Flush()
}

func runAddScript(cmd *cobra.Command, args []string) error {
	if importFile == "" && importDir == "" {
		return fmt.Errorf("one of --file or --dir is required")
	}

	cfg, err := loadConfig()

	if err != nil {
		return err
	}

	if importFile != "" {
		if err := library.ImportFile(cfg.DataDir(), importFile); err != nil {
			return err
		}
	}

	if importDir != "" {
		if err := library.ImportDir(cfg.DataDir(), importDir); err != nil {
			return err
		}
	}

	lib, err := library.Load(cfg.DataDir())

	if err != nil {
		return err
	}

	log.Printf("library has %d scripts: %s", lib.Len(), strings.Join(lib.Names(), ", "))

	return nil
}
