package db

import (
	"fmt"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPSQLStorage opens the connection pool. The caller owns it and must Close it on shutdown.
func NewPSQLStorage(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func Close(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("closing database", zap.Error(err))
		return
	}
	log.Info("Database connection closed")
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("Starting database migrations...")
	for _, model := range models.All() {
		name := fmt.Sprintf("%T", model)
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		log.Info("migration successful", zap.String("model", name))
	}
	return nil
}

// DropTables drops the given tables, or every model table when none are given.
// Tables are dropped in reverse migration order so foreign keys never block.
func DropTables(db *gorm.DB, log *zap.Logger, tables []interface{}) {
	if len(tables) == 0 {
		all := models.All()
		for i := len(all) - 1; i >= 0; i-- {
			tables = append(tables, all[i])
		}
	}

	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			log.Warn("dropping table", zap.String("table", fmt.Sprintf("%T", table)), zap.Error(err))
			continue
		}
		log.Info("table dropped", zap.String("table", fmt.Sprintf("%T", table)))
	}
}

// ModelByName resolves a table name typed on the command line.
func ModelByName(name string) (interface{}, bool) {
	for _, m := range models.All() {
		if fmt.Sprintf("%T", m) == "*models."+name {
			return m, true
		}
	}
	return nil, false
}
