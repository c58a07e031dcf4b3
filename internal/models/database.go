package models

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	gorm_zerolog "github.com/wei840222/gorm-zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the database used by the backend.
var DB *gorm.DB

// Connect opens the database and migrates the schema.
//
// The dsn is passed to the sqlite driver. If DB_HOST is set,
// a postgresql connection is used instead and the dsn is ignored.
func Connect(dsn string) error {
	var err error
	var db *gorm.DB

	config := &gorm.Config{
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: gorm_zerolog.New(),
	}

	// Check which database driver to use. If DB_HOST is set, assume postgresql
	_, ok := os.LookupEnv("DB_HOST")
	if ok {
		log.Debug().Msg("DB_HOST is set, using postgresql")
		pgDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s", os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))
		db, err = gorm.Open(postgres.Open(pgDSN), config)
	} else {
		log.Debug().Msg("DB_HOST is not set, using sqlite database")
		db, err = gorm.Open(sqlite.Open(dsn), config)
	}

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = Migrate(db)
	if err != nil {
		return err
	}

	err = registerCallbacks(db)
	if err != nil {
		return err
	}

	DB = db
	return nil
}

// registerCallbacks hooks the error translation into all database
// operations, so that the controllers only ever see the error kinds
// defined in this package.
func registerCallbacks(db *gorm.DB) error {
	err := db.Callback().Query().After("*").Register("voucherhub:after_query", queryCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Query().After("*").Register("voucherhub:after_query_general", generalCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Create().After("*").Register("voucherhub:after_create", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Create().After("*").Register("voucherhub:after_create_general", generalCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("voucherhub:after_update", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("voucherhub:after_update_general", generalCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Delete().After("*").Register("voucherhub:after_delete_general", generalCallback)
	if err != nil {
		return err
	}

	return nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		match := regexp.MustCompile("ies$")
		name = match.ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w: there is no %s matching your query", ErrResourceNotFound, name)
	}
}

// createUpdateCallback inspects errors returned by the database for
// create and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	msg := db.Error.Error()

	// Applicant emails are unique
	if strings.Contains(msg, "applicants.email") || strings.Contains(msg, "idx_applicants_email") {
		db.Error = ErrApplicantEmailNotUnique
		return
	}

	// Voucher codes and application numbers are generated, their
	// issuers retry on a collision
	if strings.Contains(msg, "vouchers.code") || strings.Contains(msg, "idx_vouchers_code") ||
		strings.Contains(msg, "applications.application_number") || strings.Contains(msg, "idx_applications_application_number") {
		db.Error = gorm.ErrDuplicatedKey
		return
	}

	if strings.Contains(msg, "review_application_reviewer_round") {
		db.Error = fmt.Errorf("%w: %s", ErrDuplicate, ErrReviewDuplicateRound)
	}
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message to users.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// "sql: database is closed" is hard-coded in the sql module, see
	// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral
	}
}

// Migrate migrates all models. Referenced models come first so
// that foreign keys can always resolve.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		Applicant{},
		Program{},
		Application{},
		Review{},
		Allocation{},
		Voucher{},
		VoucherUsage{},
		Notification{},
		File{},
		AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("error during migration: %w", err)
	}

	return nil
}
