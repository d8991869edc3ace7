package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"portfolio/internal/app"
	"portfolio/internal/config"
	"portfolio/internal/contact"
	"portfolio/internal/domain"
	"portfolio/internal/repo"
	"portfolio/internal/server"
	"portfolio/internal/site"
	foliosdk "portfolio/sdk/go"
)

var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Portfolio site CLI",
	Long: `Folio serves a single-page portfolio and collects messages from its contact form.
- Content: every section of the page lives in folio.yml (folio config init writes the default).
- serve: the page, the JSON API and the contact endpoint, with an inbox behind bearer tokens.
- contact send: submit the contact form from the terminal against a running site.
- inbox: read and delete received messages, locally or against a remote site with --remote.
- preview: scroll the page in a terminal viewport and watch sections reveal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = app.NewLogger(os.Stderr, viper.GetBool("log-json"), viper.GetString("log-level"))
		slog.SetDefault(logger)
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("FOLIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("log-json", rootCmd.PersistentFlags().Lookup("log-json"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(contactCmd())
	rootCmd.AddCommand(inboxCmd())
	rootCmd.AddCommand(sectionsCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(logCmd())
}

func serveCmd() *cobra.Command {
	var addr string
	var trustProxy bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				secret := viper.GetString("jwt-secret")
				if secret == "" {
					logger.Warn("FOLIO_JWT_SECRET is not set; inbox endpoints will reject every request")
				}
				if addr == "" {
					addr = env.Config.Server.Addr
				}
				reg := prometheus.NewRegistry()
				handler, err := server.New(server.Config{
					Engine:     env.Engine,
					Auth:       server.AuthConfig{JWTSecret: secret, Logger: logger},
					Logger:     logger,
					Registry:   reg,
					TrustProxy: trustProxy,
				})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
				go func() {
					<-ctx.Done()
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(sctx)
				}()
				logger.Info("serving portfolio", "addr", "http://"+addr, "docs", "/api/docs", "metrics", "/metrics")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr in folio.yml)")
	cmd.Flags().BoolVar(&trustProxy, "trust-proxy", false, "take the client address from X-Forwarded-For")
	return cmd
}

func contactCmd() *cobra.Command {
	c := &cobra.Command{Use: "contact", Short: "Use the contact form"}
	c.AddCommand(contactSendCmd())
	return c
}

func contactSendCmd() *cobra.Command {
	var name, email, message, baseURL string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit the contact form to a running site",
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				cfg, err := config.LoadOptional(viper.GetString("workspace"))
				if err != nil {
					return err
				}
				baseURL = cfg.Server.BaseURL
			}
			ctrl, err := contact.NewController(contact.Config{
				Submitter: contact.NewHTTPSubmitter(baseURL),
				Notify:    printNotification,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			for key, value := range map[contact.FieldKey]string{
				contact.FieldName:    name,
				contact.FieldEmail:   email,
				contact.FieldMessage: message,
			} {
				if err := ctrl.UpdateField(key, value); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			fmt.Fprintln(os.Stderr, ctrl.ButtonLabel()+" ...")
			out, err := ctrl.Submit(ctx)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				if err := printJSON(map[string]any{"outcome": out.Kind, "reason": out.Reason}); err != nil {
					return err
				}
			}
			switch out.Kind {
			case contact.Accepted:
				return nil
			case contact.ValidationRejected:
				return fmt.Errorf("not sent: %s", out.Reason)
			default:
				return fmt.Errorf("not sent: %w", out.Cause)
			}
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "your name")
	cmd.Flags().StringVar(&email, "email", "", "your email")
	cmd.Flags().StringVar(&message, "message", "", "your message")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "site URL (defaults to server.base_url in folio.yml)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 waits for the transport)")
	return cmd
}

func printNotification(n contact.Notification) {
	w := os.Stdout
	if n.Variant == contact.VariantDestructive {
		w = os.Stderr
	}
	fmt.Fprintf(w, "%s %s\n", n.Title, n.Description)
}

func inboxCmd() *cobra.Command {
	in := &cobra.Command{
		Use:   "inbox",
		Short: "Read received messages",
		Long:  "Without --remote the workspace database is used directly. With --remote the site's API is called with the token in FOLIO_TOKEN.",
	}
	in.PersistentFlags().String("remote", "", "site URL to query instead of the local database")
	_ = viper.BindPFlag("remote", in.PersistentFlags().Lookup("remote"))
	in.AddCommand(inboxListCmd())
	in.AddCommand(inboxShowCmd())
	in.AddCommand(inboxDeleteCmd())
	in.AddCommand(inboxStatsCmd())
	return in
}

func inboxListCmd() *cobra.Command {
	var limit int
	var unread bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if client := remoteClient(); client != nil {
				items, err := client.Messages(cmd.Context(), limit, unread)
				if err != nil {
					return err
				}
				rows := make([]domain.Message, 0, len(items))
				for _, m := range items {
					rows = append(rows, fromSDK(m))
				}
				return printMessages(rows)
			}
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				items, err := env.Engine.Repo.ListMessages(ctx, repo.ListFilter{Limit: limit, UnreadOnly: unread})
				if err != nil {
					return err
				}
				return printMessages(items)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum messages (0 for all)")
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread messages")
	return cmd
}

func inboxShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a message and mark it read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if client := remoteClient(); client != nil {
				m, err := client.Message(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printMessage(fromSDK(m))
			}
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				m, err := env.Engine.ReadMessage(ctx, args[0], localActor())
				if err != nil {
					return err
				}
				return printMessage(m)
			})
		},
	}
}

func inboxDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if client := remoteClient(); client != nil {
				if err := client.DeleteMessage(cmd.Context(), args[0]); err != nil {
					return err
				}
			} else {
				err := withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
					return env.Engine.DeleteMessage(ctx, args[0], localActor())
				})
				if err != nil {
					return err
				}
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"deleted": args[0]})
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
}

func inboxStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats foliosdk.InboxStats
			if client := remoteClient(); client != nil {
				var err error
				if stats, err = client.Stats(cmd.Context()); err != nil {
					return err
				}
			} else {
				err := withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
					var err error
					stats.Total, stats.Unread, err = env.Engine.Repo.CountMessages(ctx)
					return err
				})
				if err != nil {
					return err
				}
			}
			if viper.GetBool("json") {
				return printJSON(stats)
			}
			fmt.Printf("%d messages, %d unread\n", stats.Total, stats.Unread)
			return nil
		},
	}
}

func sectionsCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List page sections, or projects with --filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			if filter != "" {
				projects := site.FilterProjects(cfg.Site.Projects, filter)
				if viper.GetBool("json") {
					return printJSON(projects)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Project", "Categories", "Technologies"})
				for _, p := range projects {
					tw.AppendRow(table.Row{p.Title, strings.Join(p.Categories, ", "), strings.Join(p.Technologies, ", ")})
				}
				tw.Render()
				return nil
			}
			sections := site.Sections(cfg.Site)
			if viper.GetBool("json") {
				return printJSON(sections)
			}
			regions := site.Layout(sections)
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"#", "ID", "Title", "Rows", "Top"})
			for i, s := range sections {
				tw.AppendRow(table.Row{i + 1, s.ID, s.Title, regions[i].Height, regions[i].Top})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "show projects in this category (All for every project)")
	return cmd
}

func previewCmd() *cobra.Command {
	var p site.Preview
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Scroll the page in a terminal viewport and print sections as they reveal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			var out io.Writer = os.Stdout
			if viper.GetBool("json") {
				out = io.Discard
			}
			rep, err := p.Run(cmd.Context(), out, site.Sections(cfg.Site))
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(rep)
			}
			if len(rep.Hidden) > 0 {
				fmt.Printf("never revealed: %s\n", strings.Join(rep.Hidden, ", "))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&p.Height, "height", 24, "viewport height in rows")
	cmd.Flags().IntVar(&p.Step, "step", 0, "rows per scroll tick (default half the height)")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "stop scrolling at this row")
	cmd.Flags().BoolVar(&p.NoObserver, "no-observer", false, "run without a viewport; every section shows at once")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect folio.yml",
		Long:  "folio.yml holds the page content (owner, sections, projects, skills) and server knobs. Without it the built-in default is used.",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	cfg.AddCommand(configInitCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSONOrYAML(cfg)
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate folio.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := config.Load(viper.GetString("workspace"))
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": errString(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default folio.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an inbox bearer token (needs FOLIO_JWT_SECRET)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl == 0 {
				cfg, err := config.LoadOptional(viper.GetString("workspace"))
				if err != nil {
					return err
				}
				ttl = time.Duration(cfg.Server.Inbox.TokenTTLHours) * time.Hour
			}
			token, err := server.IssueToken(viper.GetString("jwt-secret"), subject, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "owner", "token subject, recorded as the actor of inbox changes")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to server.inbox.token_ttl_hours)")
	return cmd
}

func logCmd() *cobra.Command {
	l := &cobra.Command{Use: "log", Short: "Event log"}
	l.AddCommand(logTailCmd())
	return l
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the newest inbox events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				items, err := env.Engine.Repo.LatestEvents(ctx, n, evtType)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"TS", "Type", "Entity", "Actor", "Payload"})
				for _, e := range items {
					tw.AppendRow(table.Row{e.TS, e.Type, e.EntityID, e.ActorID, e.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	return cmd
}

// --- helpers ---

func withEnv(ctx context.Context, fn func(context.Context, *app.Env) error) error {
	env, err := app.Open(ctx, viper.GetString("workspace"))
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(ctx, env)
}

func remoteClient() *foliosdk.Client {
	base := viper.GetString("remote")
	if base == "" {
		return nil
	}
	c := foliosdk.New(base)
	c.BearerToken = viper.GetString("token")
	return c
}

func localActor() string {
	if u := os.Getenv("USER"); u != "" {
		return "local:" + u
	}
	return "local"
}

func fromSDK(m foliosdk.Message) domain.Message {
	return domain.Message{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Body:       m.Body,
		RemoteAddr: m.RemoteAddr,
		ReadAt:     m.ReadAt,
		CreatedAt:  m.CreatedAt,
	}
}

func printMessages(items []domain.Message) error {
	if viper.GetBool("json") {
		return printJSON(items)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "From", "Email", "Received", "Read"})
	for _, m := range items {
		read := ""
		if m.ReadAt != "" {
			read = "yes"
		}
		tw.AppendRow(table.Row{m.ID, m.Name, m.Email, m.CreatedAt, read})
	}
	tw.Render()
	return nil
}

func printMessage(m domain.Message) error {
	if viper.GetBool("json") {
		return printJSON(m)
	}
	fmt.Printf("From:     %s <%s>\n", m.Name, m.Email)
	fmt.Printf("Received: %s\n", m.CreatedAt)
	if m.RemoteAddr != "" {
		fmt.Printf("Address:  %s\n", m.RemoteAddr)
	}
	fmt.Println()
	fmt.Println(m.Body)
	return nil
}

func printJSONOrYAML(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Print(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
