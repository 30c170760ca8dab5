package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/api"
	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/config"
	"github.com/KAsare1/Gymhub-server/db"
	"github.com/KAsare1/Gymhub-server/logger"
	"github.com/KAsare1/Gymhub-server/service/client"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state every command starts from: configuration, a logger and a database.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func setup() (*app, error) {
	cfg := config.Load()
	log, err := logger.New(logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("logger initialization: %w", err)
	}
	zap.ReplaceGlobals(log)

	conn, err := db.NewPSQLStorage(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("database initialization: %w", err)
	}
	log.Info("Connected to the database")
	return &app{cfg: cfg, logger: log, db: conn}, nil
}

func (a *app) close() {
	db.Close(a.db, a.logger)
	_ = a.logger.Sync()
}

func withApp(run func(cmd *cobra.Command, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()
		return run(cmd, a)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gymhub",
		Short:         "Gym membership server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          withApp(serve),
	}
	cmd.AddCommand(
		&cobra.Command{Use: "serve", Short: "Run the HTTP API (default)", RunE: withApp(serve)},
		&cobra.Command{Use: "migrate", Short: "Create or update every table", RunE: withApp(migrate)},
		&cobra.Command{Use: "clear-db", Short: "Drop tables after confirmation", RunE: withApp(clearDB)},
		createAdminCmd(),
		seedClientsCmd(),
	)
	return cmd
}

func serve(_ *cobra.Command, a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewApiServer(a.cfg, api.NewServices(a.cfg, a.db, a.logger), a.logger)
	return server.Run(ctx)
}

func migrate(_ *cobra.Command, a *app) error {
	if err := db.Migrate(a.db, a.logger); err != nil {
		return err
	}
	a.logger.Info("Migrations completed successfully")
	return nil
}

func clearDB(cmd *cobra.Command, a *app) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	fmt.Fprint(out, "Are you sure you want to clear the database? (yes/no): ")
	confirmation, _ := in.ReadString('\n')
	if strings.TrimSpace(confirmation) != "yes" {
		a.logger.Info("Database clearing cancelled")
		return nil
	}

	fmt.Fprint(out, "Enter table names to clear (comma separated) or leave blank to clear all: ")
	names, _ := in.ReadString('\n')

	var tables []interface{}
	for _, name := range strings.Split(strings.TrimSpace(names), ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		model, ok := db.ModelByName(name)
		if !ok {
			a.logger.Warn("Unknown table", zap.String("table", name))
			continue
		}
		tables = append(tables, model)
	}

	db.DropTables(a.db, a.logger, tables)
	a.logger.Info("Database cleared successfully")
	return nil
}

func createAdminCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a platform administrator",
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			services := api.NewServices(a.cfg, a.db, a.logger)
			admin, err := services.Admin.CreateAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Super admin created: %s <%s>\n", admin.Name, admin.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "Super Admin", "administrator name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func seedClientsCmd() *cobra.Command {
	var ownerEmail string
	var count int
	cmd := &cobra.Command{
		Use:   "seed-clients",
		Short: "Add active test clients to an owner's gym",
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			ctx := cmd.Context()
			services := api.NewServices(a.cfg, a.db, a.logger)

			owner, err := services.Store.FindUserByEmail(ctx, strings.ToLower(ownerEmail))
			if err != nil {
				return fmt.Errorf("find owner %s: %w", ownerEmail, err)
			}
			if owner.Role != models.RoleOwner {
				return fmt.Errorf("%s is not a gym owner", ownerEmail)
			}
			scope, err := services.Resolver.Resolve(ctx, owner.ID)
			if err != nil {
				return err
			}

			start := time.Now().UTC().Format("2006-01-02")
			for i := 1; i <= count; i++ {
				email := fmt.Sprintf("client%d@example.com", i)
				_, err := services.Clients.AddClient(ctx, scope, client.AddClientInput{
					Name:           fmt.Sprintf("Client %d", i),
					Phone:          fmt.Sprintf("90000000%02d", i%100),
					Email:          &email,
					MembershipType: models.MembershipMonthly,
					StartDate:      start,
					SkipConsent:    true,
				})
				if decision, ok := client.IsQuotaError(err); ok {
					a.logger.Warn("plan limit reached, stopping",
						zap.Int64("current_count", decision.CurrentCount), zap.String("plan", decision.Plan))
					break
				}
				if err != nil {
					return err
				}
			}
			a.logger.Info("Seeded clients", zap.String("owner", owner.Email))
			return nil
		}),
	}
	cmd.Flags().StringVar(&ownerEmail, "owner", "", "owner email")
	cmd.Flags().IntVar(&count, "count", 20, "number of clients")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
