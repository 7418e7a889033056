package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var version = "dev"

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/ccview/config.yaml)")
	rootCmd.PersistentFlags().Int("max-lines", 0, "Lines shown before a long entry collapses")
	rootCmd.PersistentFlags().String("projects-dir", "", "Claude projects directory")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	renderCmd.Flags().StringP("format", "f", string(FormatTerm), "Output format: term, markdown or html")
	renderCmd.Flags().BoolP("expand", "e", false, "Show every entry in full")
	renderCmd.Flags().IntP("width", "w", 0, "Wrap width for term output")

	lsCmd.Flags().Bool("json", false, "Output as JSON")
	lsCmd.Flags().IntP("limit", "n", 0, "Show at most this many sessions")

	searchCmd.Flags().Bool("json", false, "Output as JSON")
	searchCmd.Flags().IntP("limit", "n", defaultSearchLimit, "Show at most this many matches")

	rootCmd.AddCommand(renderCmd, lsCmd, searchCmd)
}

var rootCmd = &cobra.Command{
	Use:   "ccview [session.jsonl]",
	Short: "Browse Claude Code session transcripts",
	Long:  "Browse recorded Claude Code session transcripts with tool calls, results and images rendered",
	Example: `
# Open the most recent session
ccview

# Open a specific session
ccview ~/.claude/projects/-home-me-app/0b7c.jsonl

# Print a session as HTML
ccview render -f html session.jsonl > session.html

# List sessions
ccview ls
  `,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.LogFile == "" {
			cfg.LogFile = defaultTUILogFile()
		}
		closeLog := setupLogging(cfg, cmd.ErrOrStderr())
		defer closeLog()

		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			path, err = latestSession(cfg.ProjectsDir)
			if err != nil {
				return err
			}
		}

		s, err := LoadSession(path)
		if err != nil {
			return err
		}
		slog.Info("Session loaded", "path", path, "entries", len(s.Entries), "skipped", s.Meta.Skipped)

		program := tea.NewProgram(
			NewModel(s, cfg),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("run viewer: %w", err)
		}
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <session.jsonl>",
	Short: "Print a session transcript",
	Example: `
# Print with long entries collapsed
ccview render session.jsonl

# Markdown with every entry in full
ccview render -f markdown -e session.jsonl
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		closeLog := setupLogging(cfg, cmd.ErrOrStderr())
		defer closeLog()

		format, _ := cmd.Flags().GetString("format")
		expand, _ := cmd.Flags().GetBool("expand")
		width, _ := cmd.Flags().GetInt("width")
		if width == 0 {
			width = cfg.Width
		}
		if width == 0 {
			width = terminalWidth()
		}

		s, err := LoadSession(args[0])
		if err != nil {
			return err
		}
		return Export(cmd.OutOrStdout(), s, ExportOptions{
			Format: ExportFormat(format),
			Expand: expand,
			Policy: cfg.TruncationPolicy(),
			Width:  width,
		})
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded sessions",
	Example: `
# List sessions, newest first
ccview ls

# Output session data as JSON
ccview ls --json
  `,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		closeLog := setupLogging(cfg, cmd.ErrOrStderr())
		defer closeLog()

		jsonOutput, _ := cmd.Flags().GetBool("json")
		limit, _ := cmd.Flags().GetInt("limit")

		files, err := ScanProjects(cfg.ProjectsDir)
		if err != nil {
			return err
		}
		if limit > 0 && len(files) > limit {
			files = files[:limit]
		}

		if jsonOutput {
			output := struct {
				Sessions []SessionFile `json:"sessions"`
			}{Sessions: files}

			data, err := json.Marshal(output)
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		}

		if len(files) == 0 {
			cmd.Println("No sessions found in " + cfg.ProjectsDir)
			return nil
		}

		if isTerminal(cmd.OutOrStdout()) {
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				StyleFunc(func(row, col int) lipgloss.Style {
					return lipgloss.NewStyle().Padding(0, 1)
				}).
				Headers("Project", "Session", "Size", "Modified")
			for _, sf := range files {
				t.Row(ProjectPath(sf.Project, pathExists), sf.ID, humanize.Bytes(uint64(sf.Size)), humanize.Time(sf.ModTime))
			}
			lipgloss.Fprintln(cmd.OutOrStdout(), t)
			return nil
		}

		for _, sf := range files {
			cmd.Printf("%s\t%s\t%d\t%s\n", sf.Project, sf.ID, sf.Size, sf.ModTime.Format(time.RFC3339))
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search every session for a phrase",
	Example: `
# Find where a file was edited
ccview search parser.go

# Output matches as JSON
ccview search --json "rate limit"
  `,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		closeLog := setupLogging(cfg, cmd.ErrOrStderr())
		defer closeLog()

		jsonOutput, _ := cmd.Flags().GetBool("json")
		limit, _ := cmd.Flags().GetInt("limit")
		query := strings.Join(args, " ")

		files, err := ScanProjects(cfg.ProjectsDir)
		if err != nil {
			return err
		}
		hits, err := SearchSessions(cmd.Context(), files, query, limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			output := struct {
				Query   string      `json:"query"`
				Results []SearchHit `json:"results"`
			}{Query: query, Results: hits}

			data, err := json.Marshal(output)
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		}

		if len(hits) == 0 {
			cmd.Println("No matches for " + query)
			return nil
		}

		if isTerminal(cmd.OutOrStdout()) {
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				StyleFunc(func(row, col int) lipgloss.Style {
					return lipgloss.NewStyle().Padding(0, 1)
				}).
				Headers("Project", "Session", "Entry", "Role", "Match")
			for _, h := range hits {
				t.Row(ProjectPath(h.Project, pathExists), h.SessionID, fmt.Sprintf("#%d", h.Entry), roleLabel(h.Role), h.Snippet)
			}
			lipgloss.Fprintln(cmd.OutOrStdout(), t)
			return nil
		}

		for _, h := range hits {
			cmd.Printf("%s\t%s\t#%d\t%s\t%s\n", h.Project, h.SessionID, h.Entry, h.Role, h.Snippet)
		}
		return nil
	},
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (Config, error) {
	path, _ := cmd.Flags().GetString("config")
	required := path != ""
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg, err := LoadConfig(path, required)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-lines") {
		cfg.MaxLines, _ = flags.GetInt("max-lines")
	}
	if flags.Changed("projects-dir") {
		cfg.ProjectsDir, _ = flags.GetString("projects-dir")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.Debug = true
	}
	return cfg, cfg.Validate()
}

func latestSession(projectsDir string) (string, error) {
	files, err := ScanProjects(projectsDir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", errors.New("no sessions found in " + projectsDir)
	}
	return files[0].Path, nil
}

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func terminalWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}

// Execute runs the root command.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
