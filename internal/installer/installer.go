// Package installer registers plugin functions with a MySQL server using
// CREATE FUNCTION ... SONAME and removes them with DROP FUNCTION.
package installer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/semihalev/go-udf"
	"github.com/semihalev/go-udf/internal/manifest"
)

// server error numbers returned by CREATE FUNCTION
const (
	errFunctionExists  = 1125 // ER_UDF_EXISTS
	errCantOpenLibrary = 1126 // ER_CANT_OPEN_LIBRARY
	errCantFindSymbol  = 1127 // ER_CANT_FIND_DL_ENTRY
)

// Execer is the part of *sql.DB the installer needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Installer applies DDL for the functions of one library.
type Installer struct {
	DB      Execer
	Soname  string
	Replace bool // drop existing functions before creating
}

// Open connects to the server described by a go-sql-driver DSN, e.g.
// "root:secret@tcp(localhost:3306)/". A missing dial timeout defaults to 10s.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("can't parse dsn: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	conn, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("can't make connector: %w", err)
	}
	db := sql.OpenDB(conn)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't connect to %s@%s: %w", cfg.User, cfg.Addr, err)
	}
	log.Printf("[INFO] connected to mysql %s@%s", cfg.User, cfg.Addr)
	return db, nil
}

// CreateStatement returns the CREATE FUNCTION statement for fn.
func CreateStatement(fn manifest.Function, soname string) (string, error) {
	rt, err := fn.ReturnType()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE FUNCTION %s RETURNS %s SONAME %s", quoteIdent(fn.Name), rt, quoteString(soname)), nil
}

// DropStatement returns the DROP FUNCTION statement for fn.
func DropStatement(fn manifest.Function) string {
	return fmt.Sprintf("DROP FUNCTION IF EXISTS %s", quoteIdent(fn.Name))
}

// Install creates every function. It stops at the first failure.
func (i *Installer) Install(ctx context.Context, fns []manifest.Function) error {
	if i.Soname == "" {
		return fmt.Errorf("soname is not set")
	}
	for _, fn := range fns {
		if i.Replace {
			if err := i.exec(ctx, DropStatement(fn)); err != nil {
				return fmt.Errorf("can't drop %s: %w", fn.Name, err)
			}
		}
		stmt, err := CreateStatement(fn, i.Soname)
		if err != nil {
			return fmt.Errorf("can't install %s: %w", fn.Name, err)
		}
		if err := i.exec(ctx, stmt); err != nil {
			return fmt.Errorf("can't install %s: %w", fn.Name, describe(err, i.Soname))
		}
		log.Printf("[INFO] installed %s from %s", fn.Name, i.Soname)
	}
	return nil
}

// Uninstall drops every function, ignoring ones that do not exist.
func (i *Installer) Uninstall(ctx context.Context, fns []manifest.Function) error {
	for _, fn := range fns {
		if err := i.exec(ctx, DropStatement(fn)); err != nil {
			return fmt.Errorf("can't uninstall %s: %w", fn.Name, err)
		}
		log.Printf("[INFO] uninstalled %s", fn.Name)
	}
	return nil
}

func (i *Installer) exec(ctx context.Context, stmt string) error {
	log.Printf("[DEBUG] exec %s", stmt)
	_, err := i.DB.ExecContext(ctx, stmt)
	return err
}

// describe turns the server errors a broken plugin produces into load and
// symbol errors.
func describe(err error, soname string) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case errFunctionExists:
		return fmt.Errorf("function already exists, use replace: %w", err)
	case errCantOpenLibrary:
		return udf.WrapError(udf.ErrLoad, fmt.Sprintf("server can't open %s, check plugin_dir", soname), err)
	case errCantFindSymbol:
		return udf.WrapError(udf.ErrSymbol, fmt.Sprintf("missing symbol in %s", soname), err)
	}
	return err
}

func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func quoteString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
