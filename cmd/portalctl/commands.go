package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/admins"
	"github.com/foundersportal/portal/backend/go-services/internal/config"
	"github.com/foundersportal/portal/backend/go-services/internal/database"
	"github.com/foundersportal/portal/backend/go-services/internal/directory"
	dirservice "github.com/foundersportal/portal/backend/go-services/internal/directory/service"
	"github.com/foundersportal/portal/backend/go-services/internal/tabular"
	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

// directoryOps is the part of a directory service the CLI drives.
type directoryOps interface {
	Import(ctx context.Context, format tabular.Format, r io.Reader) (*dirservice.ImportResult, error)
	Export(ctx context.Context, format tabular.Format, w io.Writer, f directory.Filter) error
}

// app is shared by all subcommands. db is nil only in tests, where
// in-memory repositories are used.
type app struct {
	out      io.Writer
	cfg      *config.Config
	client   *mongo.Client
	db       *mongo.Database
	services map[string]directoryOps
	admins   admins.Repository
}

func newService[T directory.Record](a *app, kind directory.Kind[T]) directoryOps {
	if a.db != nil {
		return dirservice.NewMongoService(kind, a.db)
	}
	return dirservice.NewMemoryService(kind)
}

func (a *app) directory(kind string) (directoryOps, error) {
	if svc, ok := a.services[kind]; ok {
		return svc, nil
	}
	var svc directoryOps
	switch kind {
	case directory.Incubators.Name:
		svc = newService(a, directory.Incubators)
	case directory.SeedInvestors.Name:
		svc = newService(a, directory.SeedInvestors)
	case directory.AngelInvestors.Name:
		svc = newService(a, directory.AngelInvestors)
	default:
		return nil, fmt.Errorf("unknown kind %q (want one of: %s)", kind, strings.Join(kindNames(), ", "))
	}
	a.services[kind] = svc
	return svc, nil
}

func (a *app) adminRepo() admins.Repository {
	if a.admins == nil {
		if a.db != nil {
			a.admins = admins.NewMongoRepository(a.db.Collection(database.Admins))
		} else {
			a.admins = admins.NewMemoryRepository()
		}
	}
	return a.admins
}

func kindNames() []string {
	names := []string{directory.Incubators.Name, directory.SeedInvestors.Name, directory.AngelInvestors.Name}
	sort.Strings(names)
	return names
}

func newRootCmd(out io.Writer) *cobra.Command {
	return newRootCmdWith(&app{out: out, services: map[string]directoryOps{}}, true)
}

// newRootCmdWith builds the command tree; connect=false skips config loading
// and the Mongo connection.
func newRootCmdWith(a *app, connect bool) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:          "portalctl",
		Short:        "Founders Portal maintenance CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			logger.Init(logLevel, "console")
			if !connect {
				return nil
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.MongoDB.URI == "" {
				return errors.New("MONGODB_URI is required")
			}
			client, err := database.ConnectWithRetry(c.Context(), cfg.MongoDB.URI, cfg.MongoDB.Timeout, 3, time.Second)
			if err != nil {
				return err
			}
			a.cfg, a.client, a.db = cfg, client, client.Database(cfg.MongoDB.Database)
			return database.EnsureIndexes(c.Context(), a.db)
		},
		PersistentPostRunE: func(c *cobra.Command, _ []string) error {
			if a.client != nil {
				return a.client.Disconnect(context.Background())
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug|info|warn|error")
	cmd.SetOut(a.out)

	cmd.AddCommand(importCmd(a), exportCmd(a), adminCmd(a))
	return cmd
}

func importCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <kind> <file>",
		Short: "Insert directory records from a CSV or XLSX file",
		Long:  "Kinds: " + strings.Join(kindNames(), ", ") + ". Invalid rows are reported and skipped.",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			svc, err := a.directory(args[0])
			if err != nil {
				return err
			}
			f, err := resolveFormat(format, args[1])
			if err != nil {
				return err
			}
			file, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer file.Close()

			res, err := svc.Import(c.Context(), f, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "imported=%d failed=%d\n", res.Imported, res.Failed)
			for _, re := range res.Errors {
				fmt.Fprintf(a.out, "  row %d: %s\n", re.Row, re.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv|xlsx (default: from the file extension)")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var format, outPath, query, sector, location string
	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Write directory records to a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			svc, err := a.directory(args[0])
			if err != nil {
				return err
			}
			f, err := tabular.ParseFormat(format)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = args[0] + "." + string(f)
			}
			file, err := os.Create(outPath)
			if err != nil {
				return err
			}
			filter := directory.Filter{Query: query, Location: location, Sectors: tabular.SplitList(sector)}
			if err := svc.Export(c.Context(), f, file, filter); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv|xlsx")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: <kind>.<format>)")
	cmd.Flags().StringVar(&query, "q", "", "free-text filter")
	cmd.Flags().StringVar(&sector, "sector", "", "comma-separated sector filter")
	cmd.Flags().StringVar(&location, "location", "", "location filter")
	return cmd
}

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage dashboard admins",
	}
	cmd.AddCommand(adminCreateCmd(a))
	return cmd
}

func adminCreateCmd(a *app) *cobra.Command {
	var in admins.CreateInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create or update an admin (password is bcrypt-hashed)",
		RunE: func(c *cobra.Command, _ []string) error {
			if in.Email == "" {
				return errors.New("--email is required")
			}
			adm, err := admins.NewService(a.adminRepo(), nil).Upsert(c.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "admin %s saved (role=%s id=%s)\n", adm.Email, adm.Role, adm.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Role, "role", "", "admin|superadmin (default admin)")
	cmd.Flags().StringVar(&in.Password, "password", "", "optional password for email sign-in")
	return cmd
}

func resolveFormat(flag, path string) (tabular.Format, error) {
	if flag != "" {
		return tabular.ParseFormat(flag)
	}
	return tabular.FormatFromFilename(path)
}
