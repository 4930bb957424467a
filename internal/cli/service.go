package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrz1836/ledgerbox/internal/archive"
	"github.com/mrz1836/ledgerbox/internal/auth"
	"github.com/mrz1836/ledgerbox/internal/backup"
	"github.com/mrz1836/ledgerbox/internal/config"
	"github.com/mrz1836/ledgerbox/internal/fileutil"
	"github.com/mrz1836/ledgerbox/internal/repository/gormstore"
	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

// openBackupService wires the configured archive, database and identity into
// a backup service. It is a variable so tests can substitute a service.
//
//nolint:gochecknoglobals // test seam
var openBackupService = func(ctx context.Context, cfg *config.Config, log LogWriter) (BackupService, func() error, error) {
	identity, err := identityFromConfig(cfg.Auth)
	if err != nil {
		return nil, nil, err
	}

	// Records are scoped to the current user; without one the scope is empty
	// and the backup operations report the missing identity themselves.
	owner := ""
	if identity != nil {
		if id, idErr := identity.Identity(ctx); idErr == nil {
			owner = id.UserID.String()
		} else {
			log.Debug("resolving identity: %v", idErr)
		}
	}

	store, err := openStore(ctx, cfg.Archive)
	if err != nil {
		return nil, nil, err
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("opening database handle: %w", err)
	}

	svc := backup.NewService(store, gormstore.NewSet(db, owner), identity, backupOptions(cfg, log)...)
	return svc, sqlDB.Close, nil
}

func backupOptions(cfg *config.Config, log LogWriter) []backup.Option {
	return []backup.Option{
		backup.WithLogger(log),
		backup.WithMaxFileSize(cfg.Backup.MaxFileSize()),
		backup.WithSchemaVersion(cfg.Backup.SchemaVersion),
	}
}

// identityFromConfig returns the configured identity provider. A token wins
// over a static user id. It returns nil when neither is configured.
func identityFromConfig(a config.AuthConfig) (auth.IdentityProvider, error) {
	switch {
	case a.Token != "":
		return auth.NewTokenProvider(a.Token, []byte(a.TokenSecret)), nil
	case a.UserID != "":
		userID, err := uuid.Parse(a.UserID)
		if err != nil {
			return nil, ledgererr.WithDetails(
				ledgererr.Wrap(ledgererr.ErrConfigInvalid, "auth.user_id is not a UUID"),
				map[string]string{"key": "auth.user_id", "value": a.UserID},
			)
		}
		return auth.Static{UserID: userID, Phone: a.Phone}, nil
	default:
		return nil, nil
	}
}

func openStore(ctx context.Context, a config.ArchiveConfig) (archive.Store, error) {
	switch a.Driver {
	case config.ArchiveS3:
		return archive.NewS3(ctx, archive.S3Config{
			Bucket:    a.Bucket,
			Prefix:    a.Prefix,
			Region:    a.Region,
			Endpoint:  a.Endpoint,
			PathStyle: a.PathStyle,
		})
	default:
		return archive.NewLocal(a.Dir)
	}
}

// openDatabase opens the ledger database. A SQLite file path is expanded and
// its directory created.
func openDatabase(d config.DatabaseConfig) (*gorm.DB, error) {
	dsn := d.DSN
	if d.Driver == config.DatabaseSQLite && !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		path, err := fileutil.ExpandHome(dsn)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), fileutil.DirPerm); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = path
	}
	return gormstore.Open(d.Driver, dsn)
}
