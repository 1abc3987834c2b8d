package config

import (
	"strings"

	"github.com/go-sql-driver/mysql"

	"mysql2pg/internal/migerr"
)

// SourceDSN builds a go-sql-driver/mysql DSN from the config's "source"
// triple. The DSN half uses a PDO-style "key=value;key=value" microsyntax
// (e.g. "host=127.0.0.1;port=3306;dbname=shop"); it is parsed field by
// field into mysql.Config rather than handed to mysql.ParseDSN directly,
// since ParseDSN expects the driver's own "user:pass@tcp(host:port)/db"
// shape, not PDO's. Open Question 2 is resolved by building a
// mysql.Config struct and calling its own FormatDSN rather than
// string-concatenating a DSN by hand.
func (c *Config) SourceDSN() (string, string, error) {
	pdoDSN, user, password, err := splitTriple(c.Source)
	if err != nil {
		return "", "", migerr.New(migerr.CodeConfig, "", "parsing source DSN", err)
	}

	fields := parsePDOFields(pdoDSN)

	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = addrFromFields(fields, "3306")
	cfg.DBName = fields["dbname"]
	if charset := fields["charset"]; charset != "" {
		cfg.Params = map[string]string{"charset": charset}
	}
	cfg.ParseTime = true

	return cfg.FormatDSN(), fields["dbname"], nil
}

func parsePDOFields(dsn string) map[string]string {
	dsn = strings.TrimPrefix(dsn, "mysql:")
	dsn = strings.TrimPrefix(dsn, "pgsql:")
	fields := make(map[string]string)
	for _, part := range strings.Split(dsn, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		fields[strings.ToLower(strings.TrimSpace(kv[0]))] = strings.TrimSpace(kv[1])
	}
	return fields
}

func addrFromFields(fields map[string]string, defaultPort string) string {
	host := fields["host"]
	if host == "" {
		host = "127.0.0.1"
	}
	port := fields["port"]
	if port == "" {
		port = defaultPort
	}
	return host + ":" + port
}
