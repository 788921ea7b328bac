package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MONGODB_CONNECTION_URI", "mongodb://localhost:27017")
	t.Setenv("CORS_ORIGINS", " http://a.local , http://b.local,")

	cfg := NewConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Address)
	assert.Equal(t, "qced", cfg.MongoDB_DBName)
	assert.Equal(t, 24, cfg.JwtExpiresHours)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowedOrigins())
}

func TestNewConfig_LoadsFileButEnvironmentWins(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	content := "JWT_SECRET=from-file\nMONGODB_CONNECTION_URI=mongodb://file\nMONGODB_DBNAME=filedb\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	t.Setenv("MONGODB_DBNAME", "envdb")
	// godotenv.Load không ghi đè biến đã có; đăng ký cleanup cho các biến file sẽ set
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("MONGODB_CONNECTION_URI", "")
	os.Unsetenv("MONGODB_CONNECTION_URI")

	cfg := NewConfig(file)
	require.NotNil(t, cfg)
	assert.Equal(t, "from-file", cfg.JwtSecret)
	assert.Equal(t, "envdb", cfg.MongoDB_DBName)
}

func TestNewConfig_MissingRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("MONGODB_CONNECTION_URI", "")
	os.Unsetenv("MONGODB_CONNECTION_URI")

	assert.Nil(t, NewConfig(filepath.Join(t.TempDir(), "missing.env")))
}

func TestAllowedOrigins_Wildcard(t *testing.T) {
	cfg := &Configuration{CORS_Origins: "*"}
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}
