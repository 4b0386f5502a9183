package connection

import (
	"fmt"

	"github.com/tokamak-network/pages-deployer/internal/logger"
	"github.com/tokamak-network/pages-deployer/pkg/infrastructure/postgres/schemas"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func Init(
	postgresUser string,
	postgresHost string,
	postgresPassword string,
	postgresDatabase string,
	postgresPort string,
) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s TimeZone=UTC",
		postgresHost,
		postgresUser,
		postgresPassword,
		postgresDatabase,
		postgresPort)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		logger.Error("Failed to connect to postgres database", zap.String("host", postgresHost), zap.Error(err))
		return nil, err
	}

	if err := Migrate(db); err != nil {
		logger.Error("Failed to auto migrate DB schemas", zap.Error(err))
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&schemas.Deployment{}, &schemas.TaskRecord{})
}
