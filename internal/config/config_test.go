package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ParsesJSONConfig(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{
		"source": "host=localhost;port=3306;dbname=shop, root, secret",
		"target": "host=localhost;port=5432;dbname=shop, postgres, secret",
		"schema": "shop"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.Schema)
	assert.Equal(t, "UTF-8", cfg.Encoding)
	assert.Equal(t, float64(10), cfg.DataChunkSize)
}

func TestLoad_ParsesXMLConfig(t *testing.T) {
	path := writeTemp(t, "cfg.xml", `<Config>
		<source>host=localhost;port=3306;dbname=shop, root, secret</source>
		<target>host=localhost;port=5432;dbname=shop, postgres, secret</target>
	</Config>`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", cfg.Encoding)
}

func TestLoad_UnrecognizedExtensionFails(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", `source: x`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingSourceOrTargetFails(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{"target": "a, b, c"}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyDefaults_FloorsDataChunkSizeBelowOne(t *testing.T) {
	c := &Config{DataChunkSize: 0.2}
	c.applyDefaults()
	assert.Equal(t, float64(1), c.DataChunkSize)
}

func TestApplyDefaults_PreservesExplicitChunkSize(t *testing.T) {
	c := &Config{DataChunkSize: 50}
	c.applyDefaults()
	assert.Equal(t, float64(50), c.DataChunkSize)
}

func TestSplitTriple_SplitsThreeCommaFields(t *testing.T) {
	dsn, user, pass, err := splitTriple("host=x;dbname=y, root, s3cr3t")
	require.NoError(t, err)
	assert.Equal(t, "host=x;dbname=y", dsn)
	assert.Equal(t, "root", user)
	assert.Equal(t, "s3cr3t", pass)
}

func TestSplitTriple_PasswordMayContainCommas(t *testing.T) {
	dsn, user, pass, err := splitTriple("host=x, root, pa,ss,word")
	require.NoError(t, err)
	assert.Equal(t, "host=x", dsn)
	assert.Equal(t, "root", user)
	assert.Equal(t, "pa,ss,word", pass)
}

func TestSplitTriple_TooFewFieldsFails(t *testing.T) {
	_, _, _, err := splitTriple("host=x, root")
	assert.Error(t, err)
}

func TestSourceDSN_BuildsGoMySQLDriverDSN(t *testing.T) {
	c := &Config{Source: "host=db.internal;port=3307;dbname=shop;charset=utf8mb4, root, secret"}
	dsn, dbname, err := c.SourceDSN()
	require.NoError(t, err)
	assert.Equal(t, "shop", dbname)
	assert.Contains(t, dsn, "root:secret@tcp(db.internal:3307)/shop")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestSourceDSN_DefaultsHostAndPort(t *testing.T) {
	c := &Config{Source: "dbname=shop, root, secret"}
	dsn, _, err := c.SourceDSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "tcp(127.0.0.1:3306)")
}

func TestTargetDSN_BuildsLibPQConnectionString(t *testing.T) {
	c := &Config{Target: "host=pg.internal;port=5433;dbname=shop, postgres, s3cret"}
	dsn, err := c.TargetDSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "host='pg.internal'")
	assert.Contains(t, dsn, "port='5433'")
	assert.Contains(t, dsn, "dbname='shop'")
	assert.Contains(t, dsn, "user='postgres'")
	assert.Contains(t, dsn, "password='s3cret'")
	assert.Contains(t, dsn, "sslmode='disable'")
}

func TestTargetDSN_MissingDBNameFails(t *testing.T) {
	c := &Config{Target: "host=pg.internal, postgres, secret"}
	_, err := c.TargetDSN()
	assert.Error(t, err)
}

func TestTargetDSN_EscapesEmbeddedQuotes(t *testing.T) {
	c := &Config{Target: "dbname=shop, postgres, p'w"}
	dsn, err := c.TargetDSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, `p\'w`)
}
