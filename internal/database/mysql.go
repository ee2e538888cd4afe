package database

import (
	"errors"
	"fmt"
	neturl "net/url"
	"sort"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func openMySQL(url string) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(url)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

// buildMySQLDSN converts a mysql:// URL into the user:pass@tcp(host:port)/db
// format expected by the go-sql-driver DSN parser.
func buildMySQLDSN(url string) (string, error) {
	parsed, err := neturl.Parse(url)
	if err != nil {
		return "", fmt.Errorf("mysql: parse url: %w", err)
	}

	if parsed.User == nil || parsed.User.Username() == "" {
		return "", errors.New("mysql: url requires a username")
	}

	name := strings.TrimPrefix(parsed.Path, "/")
	if name == "" {
		return "", errors.New("mysql: url requires a database name")
	}

	host := parsed.Hostname()
	if host == "" {
		host = "127.0.0.1"
	}

	port := parsed.Port()
	if port == "" {
		port = "3306"
	}

	user := parsed.User.Username()
	if password, ok := parsed.User.Password(); ok && password != "" {
		user = fmt.Sprintf("%s:%s", user, password)
	}

	options := map[string]string{
		"charset":   "utf8mb4",
		"parseTime": "True",
		"loc":       "Local",
	}
	for key, values := range parsed.Query() {
		if len(values) > 0 {
			options[key] = values[0]
		}
	}

	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	opts := make([]string, 0, len(keys))
	for _, key := range keys {
		opts = append(opts, fmt.Sprintf("%s=%s", key, options[key]))
	}

	return fmt.Sprintf("%s@tcp(%s:%s)/%s?%s", user, host, port, name, strings.Join(opts, "&")), nil
}
