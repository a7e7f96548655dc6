package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestBuildDSN はドライバごとのDSN文字列を検証します。
func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "mysql tcp",
			cfg:  Config{Driver: DriverMySQL, User: "u", Password: "p", Name: "d", Host: "localhost", Port: "3306"},
			want: "u:p@tcp(localhost:3306)/d?charset=utf8mb4&parseTime=true&loc=Local",
		},
		{
			name: "mysql cloud sql takes precedence",
			cfg:  Config{Driver: DriverMySQL, User: "u", Password: "p", Name: "d", Host: "localhost", Port: "3306", InstanceName: "proj:region:inst"},
			want: "u:p@unix(/cloudsql/proj:region:inst)/d?charset=utf8mb4&parseTime=true&loc=Local",
		},
		{
			name: "postgres default port",
			cfg:  Config{Driver: DriverPostgres, User: "u", Password: "p", Name: "d", Host: "db"},
			want: "host=db user=u password=p dbname=d port=5432 sslmode=disable TimeZone=UTC",
		},
		{
			name: "postgres cloud sql",
			cfg:  Config{Driver: DriverPostgres, User: "u", Password: "p", Name: "d", Port: "5433", InstanceName: "proj:region:inst"},
			want: "host=/cloudsql/proj:region:inst user=u password=p dbname=d port=5433 sslmode=disable TimeZone=UTC",
		},
		{
			name: "sqlite path",
			cfg:  Config{Driver: DriverSQLite, SQLitePath: "/tmp/x.db"},
			want: "/tmp/x.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildDSN(tt.cfg))
		})
	}
}

// TestLoadConfigFromEnv_DefaultsToSQLite はDB設定が無い場合にsqliteが選ばれることを検証します。
func TestLoadConfigFromEnv_DefaultsToSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("INSTANCE_CONNECTION_NAME", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("RUN_MIGRATIONS", "")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, DefaultSQLitePath, cfg.SQLitePath)
	assert.True(t, cfg.Migrate)
}

// TestLoadConfigFromEnv_HostImpliesPostgres はDB_HOSTのみ設定時にpostgresが選ばれることを検証します。
func TestLoadConfigFromEnv_HostImpliesPostgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "envhost", cfg.Host)
	assert.Equal(t, "5433", cfg.Port)
	assert.Equal(t, "envuser", cfg.User)
	assert.Equal(t, "envpass", cfg.Password)
	assert.Equal(t, "envdb", cfg.Name)
	assert.False(t, cfg.Migrate)
}

func TestOpenerFor_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := OpenerFor(Config{Driver: "oracle"})
	assert.Error(t, err)
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	calls := 0
	db, err := ConnectWithRetry("test-dsn", 5*time.Second, func(dsn string) (*gorm.DB, error) {
		calls++
		assert.Equal(t, "test-dsn", dsn)
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, calls)
}

// TestConnectWithRetry_GivesUp は期限内に接続できない場合にエラーを返すことを検証します。
func TestConnectWithRetry_GivesUp(t *testing.T) {
	t.Parallel()

	attempts := 0
	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, func(string) (*gorm.DB, error) {
		attempts++
		return nil, errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, attempts)
}

type migrated struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

// TestOpenDB_SQLiteMemory はインメモリsqliteへの接続とマイグレーションを検証します。
func TestOpenDB_SQLiteMemory(t *testing.T) {
	t.Parallel()

	db, err := OpenDB(Config{Driver: DriverSQLite, SQLitePath: ":memory:", Migrate: true}, &migrated{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&migrated{Name: "x"}).Error)
	var n int64
	require.NoError(t, db.Model(&migrated{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
