// internal/bootstrap/forms.go
//
// Formcheck – Start-up: building the form Registry from config.
//
// Context
//   Both binaries need the same Registry.  With forms.source "yaml" the
//   configured directories are walked.  With "sql" the database password is
//   resolved (through Vault when it is a `vault:` reference), the DSN
//   template is filled, and the form_field table is read once.
//
// Workflow
//   reg, err := bootstrap.Forms(ctx, cfg, log)
//
//------------------------------------------------------------------------------

package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/formcheck/internal/config"
	"github.com/yanizio/formcheck/internal/database"
	"github.com/yanizio/formcheck/internal/form"
	"github.com/yanizio/formcheck/internal/metrics"
	"github.com/yanizio/formcheck/internal/vault"
)

// Forms loads the Registry named by cfg.Forms and records its size in the
// forms-loaded gauge.
func Forms(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*form.Registry, error) {
	var (
		reg *form.Registry
		err error
	)
	switch cfg.Forms.Source {
	case "sql":
		reg, err = fromSQL(ctx, cfg.Database, log)
	default:
		reg, err = form.LoadDirs(ctx, cfg.Forms.Dirs...)
	}
	if err != nil {
		return nil, err
	}

	metrics.FormsLoaded.Set(float64(reg.Len()))
	log.Infow("forms online", "source", cfg.Forms.Source, "count", reg.Len())
	return reg, nil
}

func fromSQL(ctx context.Context, dbc config.Database, log *zap.SugaredLogger) (*form.Registry, error) {
	password := dbc.Password
	if vault.IsRef(password) {
		vc, err := vault.New(log.Infof)
		if err != nil {
			return nil, fmt.Errorf("vault client: %w", err)
		}
		if password, err = vc.Resolve(ctx, password); err != nil {
			return nil, fmt.Errorf("resolve database password: %w", err)
		}
	}

	dsn, err := database.DSN(dbc.DSN, password)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect forms database: %w", err)
	}
	defer db.Close()

	return form.LoadFromDB(ctx, db)
}
