package dal

import (
	"context"
	"fmt"

	"github.com/EOS-Nation/eosn-proxy/dal/do"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var GlobalDBClient *gorm.DB

func GetDB(ctx context.Context) *gorm.DB {
	return GlobalDBClient.WithContext(ctx)
}

type DBConfig struct {
	Username string
	Password string
	// Address including the ip address and port of database (e.g. 127.0.0.1:3306)
	Address      string
	DatabaseName string
}

func InitDB(cfg *DBConfig, autoCreate bool) error {
	if autoCreate {
		err := CreateDatabase(cfg)
		if err != nil {
			return err
		}
	}

	log.Info("Connecting to database", "name", cfg.DatabaseName, "address", cfg.Address)

	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.Username, cfg.Password,
		cfg.Address, cfg.DatabaseName)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}

	if autoCreate {
		err = CreateTables(db)
		if err != nil {
			return err
		}
	}

	GlobalDBClient = db

	log.Info("Successfully connected to database")

	return nil
}

func CreateDatabase(cfg *DBConfig) error {
	log.Info("Creating database", "name", cfg.DatabaseName)

	dsn := fmt.Sprintf("%s:%s@tcp(%s)/?charset=utf8mb4&parseTime=True&loc=Local", cfg.Username, cfg.Password,
		cfg.Address)
	db, err := gorm.Open(mysql.Open(dsn), nil)
	if err != nil {
		return err
	}

	createSQL := fmt.Sprintf(
		"CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4;",
		cfg.DatabaseName,
	)

	err = db.Exec(createSQL).Error
	if err != nil {
		log.Error("Unable to create database", "name", cfg.DatabaseName, "error", err)
		return err
	}
	return nil
}

// CreateTables migrates every table of the reward engine. Voter rows written
// by the previous record layout survive AutoMigrate untouched; the migrate
// command upgrades them afterwards.
func CreateTables(db *gorm.DB) error {
	tables := []interface{}{
		&do.SettingsInfo{},
		&do.RewardAssetInfo{},
		&do.PortfolioInfo{},
		&do.ReferralInfo{},
		&do.ProxyInfo{},
		&do.VoterInfo{},
		&do.ClaimReceiptInfo{},
		&do.LastClaimInfo{},
	}
	for _, table := range tables {
		log.Info("Migrating table", "table", fmt.Sprintf("%T", table))
		if err := db.AutoMigrate(table); err != nil {
			log.Error("Fail to migrate table", "table", fmt.Sprintf("%T", table), "error", err)
			return err
		}
	}
	return nil
}
