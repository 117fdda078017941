package declsql

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// Marker is the positional placeholder style a dialect uses.
type Marker int

const (
	MarkerQuestion Marker = iota // ?
	MarkerDollar                 // $1, $2, ...
)

// Dialect carries the capability flags the dispatcher consults instead of
// matching on driver names.
type Dialect struct {
	Name   string
	Marker Marker

	// SupportsLastInsertID allows methods declared with the LastInsertID
	// shape; drivers without auto-increment retrieval reject them at
	// construction.
	SupportsLastInsertID bool

	// TypedLimitArgs makes the dispatcher bind arguments named limit_*
	// as explicit integers. MySQL rejects string-typed LIMIT parameters
	// in prepared statements.
	TypedLimitArgs bool
}

var (
	MySQL    = Dialect{Name: "mysql", SupportsLastInsertID: true, TypedLimitArgs: true}
	SQLite   = Dialect{Name: "sqlite3", SupportsLastInsertID: true}
	Postgres = Dialect{Name: "postgres", Marker: MarkerDollar}
)

var dialects = map[string]Dialect{
	MySQL.Name:    MySQL,
	SQLite.Name:   SQLite,
	Postgres.Name: Postgres,
}

// DialectFor resolves the registered dialect for a database/sql driver name.
func DialectFor(driver string) (Dialect, bool) {
	d, ok := dialects[driver]
	return d, ok
}

// Config describes the target database for Open.
type Config struct {
	Driver   string
	Addr     string
	User     string
	Password string
	Database string
	Params   map[string]string

	// DSN, when set, is passed to the driver as-is and the fields above
	// are ignored.
	DSN string
}

func (c Config) dsn() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	switch c.Driver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = c.Addr
		mc.User = c.User
		mc.Passwd = c.Password
		mc.DBName = c.Database
		if len(c.Params) > 0 {
			mc.Params = make(map[string]string, len(c.Params))
			for k, v := range c.Params {
				mc.Params[k] = v
			}
		}
		return mc.FormatDSN(), nil
	default:
		return "", fmt.Errorf("no dsn builder for driver %s, set Config.DSN", c.Driver)
	}
}
