package resolutionlog

import (
	"fmt"
	"time"

	"golang.org/x/net/publicsuffix"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/masiarekpl/keypin/config"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/util"
)

const loggerPrefixDatabaseWriter = "database_writer"

type logEntry struct {
	ID            uint       `gorm:"primarykey"`
	RequestTS     *time.Time `gorm:"index"`
	IdentityType  string     `gorm:"index"`
	Domain        string
	EffectiveTLDP string
	Version       string
	State         string
	Outcome       string `gorm:"index"`
	Error         string
	KeyURL        string
	KeyDigest     string
	Degraded      bool
	DurationMs    int64
	Instance      string `gorm:"index"`
}

func (logEntry) TableName() string {
	return "resolution_log_entries"
}

type DatabaseWriter struct {
	db               *gorm.DB
	logRetentionDays int
}

// NewDatabaseWriter connects to the database and migrates the log table
func NewDatabaseWriter(dbType config.ResolutionLogType, target string, logRetentionDays uint64) (*DatabaseWriter, error) {
	switch dbType {
	case config.ResolutionLogTypeMysql:
		return newDatabaseWriter(mysql.Open(target), logRetentionDays)
	case config.ResolutionLogTypePostgresql:
		return newDatabaseWriter(postgres.Open(target), logRetentionDays)
	case config.ResolutionLogTypeSqlite:
		return newDatabaseWriter(sqlite.Open(target), logRetentionDays)
	}

	return nil, fmt.Errorf("resolution log type '%s' is not a database", dbType)
}

func newDatabaseWriter(target gorm.Dialector, logRetentionDays uint64) (*DatabaseWriter, error) {
	db, err := gorm.Open(target, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("can't create database connection: %w", err)
	}

	// Migrate the schema
	if err := db.AutoMigrate(&logEntry{}); err != nil {
		return nil, fmt.Errorf("can't perform auto migration: %w", err)
	}

	return &DatabaseWriter{
		db:               db,
		logRetentionDays: int(logRetentionDays),
	}, nil
}

func (d *DatabaseWriter) Write(entry *Entry) {
	// no eTLD+1 for names like localhost
	eTLD, _ := publicsuffix.EffectiveTLDPlusOne(entry.Domain)

	res := d.db.Create(&logEntry{
		RequestTS:     &entry.Start,
		IdentityType:  entry.IdentityType,
		Domain:        entry.Domain,
		EffectiveTLDP: eTLD,
		Version:       entry.Version,
		State:         entry.State,
		Outcome:       entry.Outcome,
		Error:         entry.Error,
		KeyURL:        entry.KeyURL,
		KeyDigest:     entry.KeyDigest,
		Degraded:      entry.Degraded,
		DurationMs:    entry.DurationMs,
		Instance:      entry.Instance,
	})

	util.LogOnErrorWithEntry(log.PrefixedLog(loggerPrefixDatabaseWriter), "can't write resolution log entry", res.Error)
}

func (d *DatabaseWriter) CleanUp() {
	deletionDate := time.Now().AddDate(0, 0, -d.logRetentionDays)

	log.PrefixedLog(loggerPrefixDatabaseWriter).Debugf("deleting log entries with request_ts < %s", deletionDate)

	res := d.db.Where("request_ts < ?", deletionDate).Delete(&logEntry{})
	util.LogOnErrorWithEntry(log.PrefixedLog(loggerPrefixDatabaseWriter), "can't clean up resolution log", res.Error)
}
