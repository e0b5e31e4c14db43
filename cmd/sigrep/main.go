package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sigrep/internal/config"
	"sigrep/internal/db"
	"sigrep/internal/domain"
	"sigrep/internal/engine"
	"sigrep/internal/export"
	"sigrep/internal/migrate"
	"sigrep/internal/repo"
	"sigrep/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "sigrep",
	Short: "SIG Cotizaciones reports CLI",
	Long: `sigrep manages technical service reports for the SIG Cotizaciones backend.
Field engineers submit finished reports or autosave drafts; the service keeps
the checklist catalog, clients and quotations they reference. The workspace is
a .sigrep directory holding the SQLite database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("SIGREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("usuario-id", "local-user", "user identifier")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("usuario-id", rootCmd.PersistentFlags().Lookup("usuario-id"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(clientCmd())
	rootCmd.AddCommand(quotationCmd())
	rootCmd.AddCommand(apikeyCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default sigrep.yml into the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			path := config.Path(workspace)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				fmt.Println("database up to date")
				return nil
			})
		},
	}
}

func catalogCmd() *cobra.Command {
	cat := &cobra.Command{Use: "catalog", Short: "Checklist catalog"}
	cat.AddCommand(catalogSeedCmd())
	cat.AddCommand(catalogListCmd())
	return cat
}

func catalogSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in checklist when the catalog is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				seeded, err := e.SeedCatalog(ctx)
				if err != nil {
					return err
				}
				if seeded {
					fmt.Println("catalog seeded")
				} else {
					fmt.Println("catalog already populated")
				}
				return nil
			})
		},
	}
}

func catalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checklist sections and items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				sections, err := e.Catalog(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(sections)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Sección", "Item", "Descripción"})
				for _, s := range sections {
					for _, it := range s.Items {
						tw.AppendRow(table.Row{s.Nombre, it.ID, it.Descripcion})
					}
				}
				tw.Render()
				return nil
			})
		},
	}
}

func reportCmd() *cobra.Command {
	rep := &cobra.Command{Use: "report", Short: "Technical reports"}
	rep.AddCommand(reportListCmd())
	rep.AddCommand(reportShowCmd())
	rep.AddCommand(reportExportCmd())
	return rep
}

func reportListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				rows, err := e.Listado(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(rows)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Folio", "Estado", "Cliente", "Ingeniero", "Creado"})
				for _, r := range rows {
					tw.AppendRow(table.Row{r.ID, r.Folio, r.Estado, deref(r.ClienteNombre), deref(r.IngenieroNombre), r.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func reportShowCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a report with its checklist and actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				rep, err := e.GetReport(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(rep)
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "report id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func reportExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the report listing to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				rows, err := e.Listado(ctx)
				if err != nil {
					return err
				}
				if err := export.WriteListado(out, rows); err != nil {
					return err
				}
				fmt.Printf("wrote %d rows to %s\n", len(rows), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "reportes.xlsx", "output file")
	return cmd
}

func clientCmd() *cobra.Command {
	cli := &cobra.Command{Use: "client", Short: "Clients"}
	cli.AddCommand(clientListCmd())
	cli.AddCommand(clientShowCmd())
	cli.AddCommand(clientCreateCmd())
	return cli
}

func clientShowCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				c, err := r.GetClient(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(c)
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "client id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func clientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				rows, err := r.ListClients(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(rows)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Nombre", "Empresa", "Email"})
				for _, c := range rows {
					tw.AppendRow(table.Row{c.ID, c.Nombre, deref(c.Empresa), deref(c.Email)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func clientCreateCmd() *cobra.Command {
	var nombre, empresa, email, telefono string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if nombre == "" {
				return fmt.Errorf("--nombre required")
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				id, err := r.InsertClient(ctx, domain.Client{
					Nombre:    nombre,
					Empresa:   optionalString(empresa),
					Email:     optionalString(email),
					Telefono:  optionalString(telefono),
					CreatedAt: time.Now().UTC().Format(time.RFC3339),
				})
				if err != nil {
					return err
				}
				fmt.Printf("created client %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&nombre, "nombre", "", "client name")
	cmd.Flags().StringVar(&empresa, "empresa", "", "company")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&telefono, "telefono", "", "phone")
	return cmd
}

func quotationCmd() *cobra.Command {
	cot := &cobra.Command{Use: "cotizacion", Short: "Quotations"}
	cot.AddCommand(quotationListCmd())
	cot.AddCommand(quotationCreateCmd())
	return cot
}

func quotationCreateCmd() *cobra.Command {
	var numero, estado, estatusPO string
	var clienteID int64
	var total float64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create quotation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if numero == "" {
				return fmt.Errorf("--numero required")
			}
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				usuarioID := viper.GetString("usuario-id")
				now := time.Now().UTC().Format(time.RFC3339)
				if err := r.EnsureUser(ctx, domain.User{ID: usuarioID, Nombre: usuarioID, CreatedAt: now}); err != nil {
					return err
				}
				q := domain.Quotation{
					NumeroCotizacion: numero,
					UsuarioID:        usuarioID,
					FechaCreacion:    now,
					Total:            total,
					Estado:           estado,
					EstatusPO:        optionalString(estatusPO),
				}
				if clienteID != 0 {
					q.ClienteID = &clienteID
				}
				id, err := r.InsertQuotation(ctx, q)
				if err != nil {
					return err
				}
				fmt.Printf("created quotation %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&numero, "numero", "", "quotation number")
	cmd.Flags().Int64Var(&clienteID, "cliente", 0, "client id")
	cmd.Flags().Float64Var(&total, "total", 0, "total amount")
	cmd.Flags().StringVar(&estado, "estado", "pendiente", "estado (pendiente, aceptada, rechazada)")
	cmd.Flags().StringVar(&estatusPO, "estatus-po", "", "purchase order status")
	return cmd
}

func quotationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List quotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				rows, err := r.ListQuotations(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(rows)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Número", "Cliente", "Total", "Estado", "PO"})
				for _, q := range rows {
					tw.AppendRow(table.Row{q.ID, q.NumeroCotizacion, deref(q.ClienteNombre), q.Total, q.Estado, deref(q.EstatusPO)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func apikeyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "apikey", Short: "API keys"}
	cmd.AddCommand(apikeyCreateCmd())
	cmd.AddCommand(apikeyListCmd())
	cmd.AddCommand(apikeyRevokeCmd())
	return cmd
}

func apikeyCreateCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key for the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				usuarioID := viper.GetString("usuario-id")
				now := time.Now().UTC().Format(time.RFC3339)
				if err := r.EnsureUser(ctx, domain.User{ID: usuarioID, Nombre: usuarioID, CreatedAt: now}); err != nil {
					return err
				}
				key := uuid.NewString()
				if err := r.InsertAPIKey(ctx, nil, domain.APIKey{
					ID:        uuid.NewString(),
					UsuarioID: usuarioID,
					Name:      name,
					KeyHash:   repo.HashAPIKey(key),
					CreatedAt: now,
				}); err != nil {
					return err
				}
				// The plain key is printed once and never stored.
				fmt.Println(key)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "key label")
	return cmd
}

func apikeyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				keys, err := r.ListAPIKeys(ctx, viper.GetString("usuario-id"))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(keys)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Usuario", "Name", "Created"})
				for _, k := range keys {
					tw.AppendRow(table.Row{k.ID, k.UsuarioID, k.Name, k.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func apikeyRevokeCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				return r.DeleteAPIKey(ctx, id)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "key id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{Use: "log", Short: "Event log"}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				events, err := r.LatestEvents(ctx, n, evtType)
				if err != nil {
					return err
				}
				return printJSON(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if basePath == "" {
				basePath = cfg.Server.BasePath
			}
			e := engine.New(conn, cfg)
			secret := os.Getenv("SIGREP_JWT_SECRET")
			if secret == "" {
				secret = cfg.Auth.JWTSecret
			}
			if secret == "" {
				return fmt.Errorf("SIGREP_JWT_SECRET is required for bearer auth")
			}
			handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: server.AuthConfig{JWTSecret: secret}})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving reports API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (default from config)")
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return err
	}
	return fn(ctx, engine.New(conn, cfg))
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
