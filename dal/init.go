package dal

import (
	"context"
	"errors"
	"fmt"

	"github.com/abesuite/gaopool/dal/do"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DBTypeMySQL  = "mysql"
	DBTypeSQLite = "sqlite"
)

var GlobalDBClient *gorm.DB

func GetDB(ctx context.Context) *gorm.DB {
	return GlobalDBClient.WithContext(ctx)
}

type DBConfig struct {
	// Type is either mysql or sqlite.
	Type     string
	Username string
	Password string
	// Address including the ip address and port of database (e.g. 127.0.0.1:3306)
	Address      string
	DatabaseName string
	// Path of the database file when Type is sqlite.
	Path string
}

func InitDB(cfg *DBConfig, autoCreate bool) error {
	if cfg == nil {
		return errors.New("nil database config")
	}

	var db *gorm.DB
	var err error
	switch cfg.Type {
	case DBTypeSQLite:
		log.Infof("Opening database file %v...", cfg.Path)
		db, err = OpenSQLite(cfg.Path)
		if err != nil {
			return err
		}
	case DBTypeMySQL, "":
		if autoCreate {
			err = CreateDatabase(cfg)
			if err != nil {
				return err
			}
		}
		log.Infof("Connecting to database %v at %v...", cfg.DatabaseName, cfg.Address)
		db, err = gorm.Open(mysql.Open(mysqlDSN(cfg, true)), &gorm.Config{Logger: logger.Discard})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	if autoCreate {
		err = CreateTables(db)
		if err != nil {
			return err
		}
	}

	GlobalDBClient = db

	log.Infof("Successfully connect to database")

	return nil
}

// OpenSQLite opens a sqlite database.  The pool serializes writes, so a
// single connection is used which also keeps in-memory databases alive.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func mysqlDSN(cfg *DBConfig, withDatabase bool) string {
	name := ""
	if withDatabase {
		name = cfg.DatabaseName
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.Username, cfg.Password,
		cfg.Address, name)
}

func CreateDatabase(cfg *DBConfig) error {
	log.Infof("Creating database %s...", cfg.DatabaseName)

	db, err := gorm.Open(mysql.Open(mysqlDSN(cfg, false)), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return err
	}

	createSQL := fmt.Sprintf(
		"CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4;",
		cfg.DatabaseName,
	)

	err = db.Exec(createSQL).Error
	if err != nil {
		log.Infof("Unable to create database %s...", cfg.DatabaseName)
		return err
	}
	return nil
}

// CreateTables migrates every table the ledger needs.
func CreateTables(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil gorm db")
	}

	tables := []struct {
		name  string
		model interface{}
	}{
		{"pool_config_infos", &do.PoolConfigInfo{}},
		{"account_infos", &do.AccountInfo{}},
		{"stake_infos", &do.StakeInfo{}},
		{"epoch_record_infos", &do.EpochRecordInfo{}},
		{"window_state_infos", &do.WindowStateInfo{}},
		{"contribution_infos", &do.ContributionInfo{}},
		{"redemption_infos", &do.RedemptionInfo{}},
	}
	for _, table := range tables {
		log.Debugf("Creating table %s...", table.name)
		err := db.AutoMigrate(table.model)
		if err != nil {
			log.Errorf("Fail to create table %s", table.name)
			return err
		}
	}
	return nil
}
