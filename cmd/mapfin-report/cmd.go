package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"mapfin/internal/analytics"
	"mapfin/internal/backend"
	"mapfin/internal/cli"
	"mapfin/internal/config"
	"mapfin/internal/dashboard"
	"mapfin/internal/format"
	"mapfin/internal/log"
	"mapfin/internal/sheets"
	"mapfin/internal/sheets/remote"
)

const (
	jsonOutputFormat  = "json"
	tableOutputFormat = "table"

	remoteSource = "remote"
	localSource  = "local"
)

// options are the persistent flags shared by every view.
type options struct {
	source       string
	baseURL      string
	person       string
	preset       string
	ref          string
	output       string
	currency     string
	numberFormat string
	rate         float64
	liveRate     bool
	debug        bool
}

// app is what the views need once the persistent flags are resolved.
type app struct {
	opts     options
	svc      *dashboard.Service
	settings format.Settings
	logger   *log.Logger
	cleanup  func() error
}

func (a *app) request() (dashboard.Request, error) {
	req := dashboard.Request{PersonID: a.opts.person}
	if a.opts.preset != "" {
		p, err := analytics.ParsePreset(a.opts.preset)
		if err != nil {
			return req, err
		}
		req.Preset = p
	}
	if a.opts.ref != "" {
		ref, err := time.Parse(time.DateOnly, a.opts.ref)
		if err != nil {
			return req, fmt.Errorf("invalid --as-of date %q: %w", a.opts.ref, err)
		}
		req.Ref = ref
	}
	return req, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "mapfin-report",
		Short:         "Household finance reports from the mapfin data",
		Long:          `Builds the dashboard views (home, expenses, wealth, goals) from the mapfin proxy or a local backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.cleanup != nil {
				return a.cleanup()
			}
			return nil
		},
	}

	// An empty base URL falls back to MAPFIN_API_URL after .env loading.
	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.source, "source", remoteSource, "Data source: remote (proxy) or local (configured backend)")
	flags.StringVar(&a.opts.baseURL, "base-url", "", "Proxy base URL (default $MAPFIN_API_URL)")
	flags.StringVarP(&a.opts.person, "person", "p", "", "Restrict to one person id")
	flags.StringVar(&a.opts.preset, "preset", "", "Time range preset: "+presetList())
	flags.StringVar(&a.opts.ref, "as-of", "", "Reference date YYYY-MM-DD (default today)")
	flags.StringVarP(&a.opts.output, "output", "o", tableOutputFormat, "Output format: table or json")
	flags.StringVar(&a.opts.currency, "currency", string(format.INR), "Display currency: INR or USD")
	flags.StringVar(&a.opts.numberFormat, "number-format", string(format.Indian), "Number format: indian or western")
	flags.Float64Var(&a.opts.rate, "rate", format.DefaultExchangeRate, "INR per USD")
	flags.BoolVar(&a.opts.liveRate, "live-rate", false, "Fetch the current INR per USD rate")
	flags.BoolVar(&a.opts.debug, "debug", false, "Enable debug logging")

	root.AddCommand(homeCmd(a), expensesCmd(a), wealthCmd(a), goalsCmd(a))
	return root
}

func presetList() string {
	names := make([]string, len(analytics.Presets))
	for i, p := range analytics.Presets {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func (a *app) init(cmd *cobra.Command) error {
	if !slices.Contains([]string{tableOutputFormat, jsonOutputFormat}, a.opts.output) {
		return fmt.Errorf("invalid output format: %s (must be table or json)", a.opts.output)
	}
	if err := cli.LoadEnvFile(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	level := slog.LevelWarn
	if a.opts.debug {
		level = slog.LevelDebug
	}
	a.logger = log.Setup(log.Config{
		Level:     level,
		Component: log.ComponentReport,
		Output:    cmd.ErrOrStderr(),
	})

	settings, err := a.displaySettings(cmd.Context())
	if err != nil {
		return err
	}
	a.settings = settings

	reader, err := a.openSource(cmd.Context())
	if err != nil {
		return err
	}
	a.svc = dashboard.NewService(sheets.NewLoader(reader))
	return nil
}

func (a *app) displaySettings(ctx context.Context) (format.Settings, error) {
	cur, err := format.ParseCurrency(a.opts.currency)
	if err != nil {
		return format.Settings{}, err
	}
	nf, err := format.ParseNumberFormat(a.opts.numberFormat)
	if err != nil {
		return format.Settings{}, err
	}
	s := format.Settings{Currency: cur, NumberFormat: nf, ExchangeRate: a.opts.rate}
	if err := s.Validate(); err != nil {
		return format.Settings{}, err
	}
	if a.opts.liveRate && s.Currency == format.USD {
		live, err := format.NewRateSource(nil, 0).Apply(ctx, s)
		if err != nil {
			a.logger.Warn("Using configured exchange rate", log.FieldError, err.Error())
		} else {
			s = live
		}
	}
	return s, nil
}

func (a *app) openSource(ctx context.Context) (sheets.RowReader, error) {
	switch a.opts.source {
	case remoteSource:
		base := a.opts.baseURL
		if base == "" {
			base = config.Load().ProxyURL
		}
		a.logger.Debug("Reading from proxy", "base_url", base)
		return remote.New(base, nil), nil
	case localSource:
		cfg, err := cli.LoadAndValidateConfig()
		if err != nil {
			return nil, err
		}
		bcfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return nil, err
		}
		res, err := backend.NewFactory(a.logger.WithComponent(log.ComponentBackend)).CreateBackend(ctx, bcfg)
		if err != nil {
			return nil, err
		}
		a.cleanup = res.Close
		return res.Store, nil
	default:
		return nil, fmt.Errorf("invalid source: %s (must be remote or local)", a.opts.source)
	}
}

func (a *app) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

func createStyledTable(headers ...string) *table.Table {
	var (
		purple    = lipgloss.Color("99")
		gray      = lipgloss.Color("245")
		lightGray = lipgloss.Color("241")

		headerStyle  = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
		cellStyle    = lipgloss.NewStyle().Padding(0, 1)
		oddRowStyle  = cellStyle.Foreground(gray)
		evenRowStyle = cellStyle.Foreground(lightGray)
	)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers(headers...)
}

func printTable(w io.Writer, title string, t *table.Table) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(title))
	fmt.Fprintln(w, t.Render())
}

func execute() int {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, analytics.ErrInvalidPreset) {
			fmt.Fprintln(os.Stderr, "Valid presets:", presetList())
		}
		return 1
	}
	return 0
}
