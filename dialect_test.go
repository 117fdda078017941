package declsql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	cfg := Config{
		Driver:   "mysql",
		Addr:     "127.0.0.1:3306",
		User:     "app",
		Password: "secret",
		Database: "appdb",
		Params:   map[string]string{"parseTime": "true"},
	}
	dsn, err := cfg.dsn()
	require.NoError(t, err)
	require.Equal(t, "app:secret@tcp(127.0.0.1:3306)/appdb?parseTime=true", dsn)
}

func TestDSNOverride(t *testing.T) {
	cfg := Config{Driver: "postgres", DSN: "postgres://app@localhost/appdb"}
	dsn, err := cfg.dsn()
	require.NoError(t, err)
	require.Equal(t, "postgres://app@localhost/appdb", dsn)
}

func TestDSNUnknownDriver(t *testing.T) {
	_, err := Config{Driver: "oracle"}.dsn()
	require.Error(t, err)
}

func TestDialectFor(t *testing.T) {
	d, ok := DialectFor("mysql")
	require.True(t, ok)
	require.True(t, d.SupportsLastInsertID)
	require.True(t, d.TypedLimitArgs)

	d, ok = DialectFor("postgres")
	require.True(t, ok)
	require.False(t, d.SupportsLastInsertID)
	require.Equal(t, MarkerDollar, d.Marker)

	_, ok = DialectFor("oracle")
	require.False(t, ok)
}
