package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"purchase-analytics/pkg/models"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect identifie le moteur SQL derrière *sql.DB.
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

// DefaultTable reçoit les lignes du rapport.
const DefaultTable = "department_report"

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open DSN mariadb:// ou mysql:// → format MySQL driver ; sqlite://chemin ou
// file:... → modernc sqlite ; sinon DSN MySQL natif.
func Open(dsn string) (*sql.DB, Dialect, error) {
	driver, source, dialect, err := resolveDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, "", err
	}
	if dialect == DialectSQLite {
		// un seul écrivain
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, dialect, nil
}

func resolveDSN(dsn string) (driver, source string, dialect Dialect, err error) {
	switch {
	case dsn == "":
		return "", "", "", fmt.Errorf("dsn vide")
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", "", fmt.Errorf("dsn sqlite sans chemin")
		}
		return "sqlite", path, DialectSQLite, nil
	case strings.HasPrefix(dsn, "file:"):
		return "sqlite", dsn, DialectSQLite, nil
	default:
		mysqlDSN, err := toMySQLDSN(dsn)
		if err != nil {
			return "", "", "", err
		}
		return "mysql", mysqlDSN, DialectMySQL, nil
	}
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("dsn incomplet (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// Redact masque le mot de passe d'un DSN URL avant de le journaliser.
func Redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); !ok {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}

func createTableSQL(dialect Dialect, table string) string {
	if dialect == DialectSQLite {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id TEXT NOT NULL,
			department_id INTEGER NOT NULL,
			number_of_orders INTEGER NOT NULL,
			number_of_first_orders INTEGER NOT NULL,
			percentage TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, department_id)
		)`, table)
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id CHAR(36) NOT NULL,
		department_id BIGINT NOT NULL,
		number_of_orders BIGINT NOT NULL,
		number_of_first_orders BIGINT NOT NULL,
		percentage DECIMAL(5,2) NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (run_id, department_id)
	)`, table)
}

// SaveReport enregistre les lignes du rapport sous runID, en une transaction.
func SaveReport(
	ctx context.Context,
	db *sql.DB,
	dialect Dialect,
	table string,
	runID string,
	rows []models.ReportRow,
) (err error) {
	if !tableNameRe.MatchString(table) {
		return fmt.Errorf("table invalide")
	}

	if _, err := db.ExecContext(ctx, createTableSQL(dialect, table)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s
			(run_id, department_id, number_of_orders, number_of_first_orders, percentage, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, table))
	if err != nil {
		return err
	}

	createdAt := time.Now().UTC()
	for _, r := range rows {
		if _, err = stmt.ExecContext(ctx,
			runID, r.DepartmentID, r.NumberOfOrders, r.NumberOfFirstOrders, r.Percentage, createdAt,
		); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("insert department_id=%d: %w", r.DepartmentID, err)
		}
	}
	if err = stmt.Close(); err != nil {
		return err
	}
	return tx.Commit()
}
