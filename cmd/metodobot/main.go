package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/metodolab/metodobot/internal/chat"
	"github.com/metodolab/metodobot/internal/config"
	"github.com/metodolab/metodobot/internal/fallback"
	"github.com/metodolab/metodobot/internal/records"
	"github.com/metodolab/metodobot/internal/search"
	"github.com/metodolab/metodobot/internal/spinner"

	"github.com/spf13/cobra"
)

// buildConfig loads the configuration file (when given) and applies flag
// overrides on top.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if v, _ := cmd.Flags().GetString("records"); v != "" {
		cfg.RecordsURL = v
	}
	if v, _ := cmd.Flags().GetString("table-page"); v != "" {
		cfg.TablePage = v
	}
	if v, _ := cmd.Flags().GetString("local-records"); v != "" {
		cfg.LocalRecords = v
	}
	if v, _ := cmd.Flags().GetString("fallback"); v != "" {
		cfg.FallbackURL = v
	}
	if v, _ := cmd.Flags().GetInt("limit"); v > 0 {
		cfg.MaxResults = v
	}
	return cfg, nil
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// loadRecords runs the record loader with a wait indicator. A failed load is
// not fatal; the controller answers with a data-unavailable message instead.
func loadRecords(ctx context.Context, cfg *config.Config, quiet bool) []records.Record {
	loader := &records.Loader{
		APIURL:      cfg.RecordsURL,
		TablePage:   cfg.TablePage,
		LocalFile:   cfg.LocalRecords,
		MaxAttempts: cfg.RetryAttempts,
		Backoff:     cfg.RetryBackoff(),
	}

	var recs []records.Record
	load := func() error {
		var err error
		recs, err = loader.Load(ctx)
		return err
	}

	var err error
	if quiet {
		err = load()
	} else {
		err = spinner.New(os.Stderr, "Cargando metodologías...").While(load)
	}
	if err != nil {
		slog.Error("record load failed", "error", err)
		return nil
	}

	slog.Debug("records loaded", "count", len(recs))
	return recs
}

func newController(ctx context.Context, cfg *config.Config, quiet bool) *chat.Controller {
	recs := loadRecords(ctx, cfg, quiet)

	var engine chat.Searcher
	if len(recs) > 0 {
		e := search.New(recs)
		e.MaxResults = cfg.MaxResults
		engine = e
	}

	var remote chat.Reasoner
	if cfg.FallbackURL != "" {
		remote = &fallback.Client{
			Endpoint:      cfg.FallbackURL,
			ContextTokens: cfg.ContextTokens,
		}
	}

	return chat.New(recs, engine, remote, chat.Contact{
		Address: cfg.Contact.Address,
		Phone:   cfg.Contact.Phone,
		Email:   cfg.Contact.Email,
		Hours:   cfg.Contact.Hours,
	})
}

// repl reads queries line by line until EOF or interrupt.
func repl(ctx context.Context, c *chat.Controller, quiet bool) error {
	if !quiet {
		fmt.Println(c.Welcome())
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if !quiet {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		var reply chat.Reply
		ask := func() error {
			reply = c.Handle(ctx, query)
			return nil
		}
		if quiet {
			ask()
		} else {
			spinner.New(os.Stderr, "Consultando...").While(ask)
		}
		fmt.Println(reply.HTML)

		if reply.Kind == chat.KindNotFound && !quiet {
			if suggestions := c.Suggest(query); len(suggestions) > 0 {
				fmt.Println("Sugerencias:")
				for _, s := range suggestions {
					fmt.Printf("  - %s\n", s)
				}
			}
		}
	}
	return scanner.Err()
}

var rootCmd = &cobra.Command{
	Use:   "metodobot",
	Short: "Chat assistant for searching analytical methodology records",
	Long: `Metodobot answers free-text questions about a laboratory's analytical
methodologies: which analytes are covered, in which matrices, with which
techniques and detection limits. Answers are HTML fragments ready for the
web chat widget.

Examples:
  metodobot --config metodobot.yaml
  metodobot --records https://lab.example/api/metodologias --ask "tetraciclinas en salmón"
  echo "¿analizan micotoxinas?" | metodobot --quiet --local-records metodologias.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		quiet, _ := cmd.Flags().GetBool("quiet")
		setupLogger(debug)

		cfg, err := buildConfig(cmd)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		c := newController(ctx, cfg, quiet)

		if query, _ := cmd.Flags().GetString("ask"); query != "" {
			reply := c.Handle(ctx, query)
			fmt.Println(reply.HTML)
			if reply.Kind == chat.KindNoData {
				return errors.New("methodology records unavailable")
			}
			return nil
		}

		return repl(ctx, c, quiet)
	},
}

func init() {
	rootCmd.Flags().String("config", "", "Path to YAML configuration file")

	// record source flags, tried in order: API, table page, local file
	rootCmd.Flags().StringP("records", "r", "", "Methodology API endpoint URL")
	rootCmd.Flags().String("table-page", "", "Rendered methodology table URL or file (API fallback)")
	rootCmd.Flags().String("local-records", "", "Local JSON records file (last fallback, - for stdin)")

	rootCmd.Flags().String("fallback", "", "Remote reasoning endpoint URL")
	rootCmd.Flags().String("ask", "", "Answer a single query and exit")
	rootCmd.Flags().IntP("limit", "l", 0, "Maximum scored records per query")

	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress prompts and progress output")
	rootCmd.Flags().BoolP("debug", "D", false, "Enable debug logging")
	_ = rootCmd.Flags().MarkHidden("debug")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
