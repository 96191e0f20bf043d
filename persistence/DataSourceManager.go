package persistence

import (
	"context"
	"os"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	"github.com/sirupsen/logrus"
	otgorm "github.com/smacker/opentracing-gorm"
)

var ActiveDataSourceManager *DataSourceManager

type DataSourceManager struct {
	gormDB *gorm.DB

	DatabaseConfig *DatabaseConfig
}

// GormDB returns a fresh session bound to ctx so queries join the active
// trace. Returns nil before Start.
func (m *DataSourceManager) GormDB(ctx context.Context) *gorm.DB {
	if m.gormDB == nil {
		return nil
	}
	return otgorm.SetSpanToGorm(ctx, m.gormDB.New())
}

func (m *DataSourceManager) Start() error {
	db, err := gorm.Open(m.DatabaseConfig.DriverType, m.DatabaseConfig.DriverArgs)
	if err != nil {
		return err
	}
	if err := db.DB().Ping(); err != nil {
		return err
	}

	otgorm.AddGormCallbacks(db)
	if os.Getenv("GIN_MODE") != "release" {
		db.LogMode(true)
	}
	m.gormDB = db
	return nil
}

func (m *DataSourceManager) Stop() {
	if m.gormDB == nil {
		return
	}
	if err := m.gormDB.Close(); err != nil {
		logrus.Warnf("failed to close database connection: %v", err)
	}
	m.gormDB = nil
}
