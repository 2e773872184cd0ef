package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"leetdoist/internal/background"
	"leetdoist/internal/calendar"
	"leetdoist/internal/config"
	"leetdoist/internal/due"
	"leetdoist/internal/formatter"
	"leetdoist/internal/log"
	"leetdoist/internal/options"
	"leetdoist/internal/page"
	"leetdoist/internal/popup"
	"leetdoist/internal/problem"
	"leetdoist/internal/relay"
	"leetdoist/internal/scraper"
	"leetdoist/internal/sites/leetcode"
	"leetdoist/internal/store"
	"leetdoist/internal/todoist"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configFile   string
	showUI       bool
	proxyURL     string
	timeout      time.Duration
	logLevel     string
	dueOption    string
	dueDate      string
	htmlFile     string
	outputFormat string
	outputFile   string
	calMonth     string
	calSelected  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:     "leetdoist",
		Short:   "Turn LeetCode problems into Todoist tasks",
		Version: version,
		Long: `leetdoist reads the title and address of a LeetCode problem page and
creates a Todoist task for it, due on a relative day or a chosen date.`,
		Example: `  # Store the Todoist API token
  leetdoist token set 0123456789abcdef

  # Add a problem due tomorrow
  leetdoist add https://leetcode.com/problems/two-sum/

  # Add a problem due on a given date and print JSON
  leetdoist add --due custom --date 2025-03-01 -f json https://leetcode.com/problems/two-sum/

  # Use a saved page instead of a browser
  leetdoist add --html two-sum.html https://leetcode.com/problems/two-sum/

  # Pick the due date interactively
  leetdoist popup https://leetcode.com/problems/two-sum/`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./config.yaml or the user config dir)")
	rootCmd.PersistentFlags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", os.Getenv("LEETDOIST_PROXY"), "Proxy URL (e.g. http://127.0.0.1:7890), defaults to LEETDOIST_PROXY env var")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0, "Page load and request timeout (default from config, 30s)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newAddCmd(), newPopupCmd(), newTokenCmd(), newCalendarCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add URL",
		Short: "Create a Todoist task for a problem page",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdd,
	}
	cmd.Flags().StringVar(&dueOption, "due", due.Options[0].Token, "Due option ("+strings.Join(dueTokens(), ", ")+")")
	cmd.Flags().StringVar(&dueDate, "date", "", "Due date YYYY-MM-DD, used with --due custom")
	cmd.Flags().StringVar(&htmlFile, "html", "", "Read the problem from a saved HTML file instead of a browser")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format ("+strings.Join(formatter.Formats, ", ")+")")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (format inferred from extension if -f not specified)")
	return cmd
}

func newPopupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "popup [URL]",
		Short: "Open the interactive popup for a problem page",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPopup,
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored Todoist API token",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set TOKEN",
			Short: "Store the Todoist API token",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp()
				if err != nil {
					return err
				}
				defer a.close()
				return report(options.Save(cmd.Context(), a.store, args[0]))
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the stored token, masked",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp()
				if err != nil {
					return err
				}
				defer a.close()
				token, status := options.Load(cmd.Context(), a.store)
				if token != "" {
					fmt.Println(options.Mask(token))
				}
				return report(status)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the stored token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp()
				if err != nil {
					return err
				}
				defer a.close()
				return report(options.Clear(cmd.Context(), a.store))
			},
		},
	)
	return cmd
}

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month of the date picker",
		Args:  cobra.NoArgs,
		RunE:  runCalendar,
	}
	cmd.Flags().StringVar(&calMonth, "month", "", "Month to display, YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&calSelected, "selected", "", "Selected date, YYYY-MM-DD")
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	target := normalizeURL(args[0])

	// If output file is specified but format is not, infer format from file extension
	if outputFile != "" && !cmd.Flags().Changed("format") {
		if inferred := formatter.InferFromExtension(outputFile); inferred != "" {
			outputFormat = inferred
		}
	}
	sel, err := validateFlags()
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	src, err := a.openSource(ctx, target)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := a.serve(src); err != nil {
		return err
	}

	ctrl := popup.NewController(a.relay, a.log)
	data, status, ok := ctrl.LoadProblem(a.requestCtx(ctx))
	if !ok {
		return report(status)
	}

	status, err = ctrl.Submit(a.requestCtx(ctx), data, dueOption, dueDate)
	if err != nil {
		return err
	}

	out, err := formatter.Format(leetcode.NewTaskContent(data, sel, status), outputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Output written to: %s\n", outputFile)
	} else {
		fmt.Println(out)
	}

	if status.Tone == options.ToneError {
		return fmt.Errorf("%s", status.Text)
	}
	return nil
}

func runPopup(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()

	// Without a URL there is no page context; the popup reports it.
	var src scraper.Page
	if len(args) == 1 {
		src, err = a.openSource(ctx, normalizeURL(args[0]))
		if err != nil {
			return err
		}
		defer src.Close()
	}
	if err := a.serve(src); err != nil {
		return err
	}

	return popup.Run(ctx, popup.NewController(a.relay, a.log), a.cfg.Browser.Timeout)
}

func runCalendar(cmd *cobra.Command, args []string) error {
	now := time.Now
	if calMonth != "" {
		m, err := time.ParseInLocation("2006-01", calMonth, time.Local)
		if err != nil {
			return fmt.Errorf("invalid month %q, want YYYY-MM", calMonth)
		}
		now = func() time.Time { return m }
	}
	if calSelected != "" {
		if _, ok := due.ParseDate(calSelected); !ok {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", calSelected)
		}
	}

	w := calendar.New(now)
	if calMonth == "" {
		w.Open(calSelected)
	} else {
		w.Open("")
	}
	fmt.Print(w.Render(calSelected, 0))
	return nil
}

// app is the wiring shared by the commands.
type app struct {
	cfg     *config.Config
	log     log.Logger
	store   *store.FileStore
	relay   *relay.Relay
	stopFns []func()
}

func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if timeout > 0 {
		cfg.Browser.Timeout = timeout
	}
	if proxyURL != "" {
		cfg.Browser.Proxy = proxyURL
	}
	if showUI {
		cfg.Browser.Headless = false
	}

	l := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	return &app{
		cfg:   cfg,
		log:   l,
		store: store.NewFileStore(cfg.Store.Path),
		relay: relay.New(l),
	}, nil
}

// serve starts the background listener and, when src is set, the page
// listener.
func (a *app) serve(src problem.Source) error {
	if src != nil {
		poll := problem.PollConfig{Attempts: a.cfg.Extractor.Attempts, Interval: a.cfg.Extractor.Interval}
		stop, err := page.NewHandler(src, poll, a.log).Serve(a.relay)
		if err != nil {
			return fmt.Errorf("failed to start page context: %w", err)
		}
		a.stopFns = append(a.stopFns, stop)
	}

	client := todoist.NewClient(a.cfg.Todoist.Endpoint)
	stop, err := background.NewCreator(a.store, client, a.log).Serve(a.relay)
	if err != nil {
		return fmt.Errorf("failed to start background: %w", err)
	}
	a.stopFns = append(a.stopFns, stop)
	return nil
}

func (a *app) requestCtx(ctx context.Context) context.Context {
	return log.WithRequestID(ctx, uuid.NewString())
}

func (a *app) close() {
	for _, stop := range a.stopFns {
		stop()
	}
	_ = a.log.Sync()
}

// openSource opens target in a browser, or reads --html when given.
func (a *app) openSource(ctx context.Context, target string) (scraper.Page, error) {
	if htmlFile != "" {
		src, err := problem.LoadFile(htmlFile, target)
		if err != nil {
			return nil, err
		}
		return staticPage{src}, nil
	}

	s, ok := scraper.ForURL(target)
	if !ok {
		return nil, fmt.Errorf("unsupported site: %s (supported: %s)", target, strings.Join(scraper.Names(), ", "))
	}

	opts := scraper.Options{
		Timeout:    a.cfg.Browser.Timeout,
		ShowUI:     !a.cfg.Browser.Headless,
		BrowserBin: a.cfg.Browser.Bin,
	}
	p, err := s.Open(ctx, target, opts)
	if err == nil {
		return p, nil
	}

	// If failed and proxy is available, retry with proxy
	if a.cfg.Browser.Proxy == "" {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	a.log.Warnf(ctx, "first attempt failed: %v", err)
	a.log.Warnf(ctx, "retrying with proxy: %s", a.cfg.Browser.Proxy)
	opts.ProxyURL = a.cfg.Browser.Proxy
	p, err = s.Open(ctx, target, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open page (even with proxy): %w", err)
	}
	return p, nil
}

type staticPage struct {
	*problem.StaticSource
}

func (staticPage) Close() error { return nil }

// report prints status and turns an error tone into a command failure.
func report(s options.Status) error {
	if s.Tone == options.ToneError {
		return fmt.Errorf("%s", s.Text)
	}
	fmt.Println(s.Text)
	return nil
}

// validateFlags checks the add flags and resolves the due selection before
// any browser is started.
func validateFlags() (due.Selection, error) {
	valid := false
	for _, f := range formatter.Formats {
		if f == outputFormat {
			valid = true
		}
	}
	if !valid {
		return due.Selection{}, fmt.Errorf("invalid output format: %s", outputFormat)
	}
	if !due.IsValidToken(dueOption) {
		return due.Selection{}, fmt.Errorf("invalid due option: %s", dueOption)
	}
	if dueDate != "" && dueOption != due.CustomToken {
		return due.Selection{}, fmt.Errorf("--date is only valid with --due %s", due.CustomToken)
	}
	sel, err := due.Resolve(dueOption, dueDate)
	if err != nil {
		if dueOption == due.CustomToken {
			return due.Selection{}, fmt.Errorf("--due %s needs a valid --date YYYY-MM-DD, got %q", due.CustomToken, dueDate)
		}
		return due.Selection{}, fmt.Errorf("invalid due option: %w", err)
	}
	return sel, nil
}

func dueTokens() []string {
	tokens := make([]string, 0, len(due.Options))
	for _, o := range due.Options {
		tokens = append(tokens, o.Token)
	}
	return tokens
}

// normalizeURL adds https:// when the protocol is missing.
func normalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return rawURL
	}
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "https://" + rawURL
	}
	return rawURL
}
