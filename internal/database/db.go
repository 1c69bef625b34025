// Package database opens the MySQL pool the repositories share.
package database

import (
    "context"
    "database/sql"
    "net"
    "time"

    "github.com/go-sql-driver/mysql"
)

// dsnConfig builds the driver config for one server instance.
// ParseTime and UTC matter here: departure times and lock expiries are
// compared against time.Now() in UTC throughout the reservation flow.
func dsnConfig(user, pass, host, port, name string) *mysql.Config {
    cfg := mysql.NewConfig()
    cfg.User = user
    cfg.Passwd = pass
    cfg.Net = "tcp"
    cfg.Addr = net.JoinHostPort(host, port)
    cfg.DBName = name
    cfg.ParseTime = true
    cfg.Loc = time.UTC
    cfg.Params = map[string]string{"charset": "utf8mb4"}
    return cfg
}

// Open connects to MySQL and verifies the connection before any
// repository is built on top of it.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
    db, err := sql.Open("mysql", dsnConfig(user, pass, host, port, name).FormatDSN())
    if err != nil {
        return nil, err
    }

    // Seat maps and schedule searches fan out short point queries, so
    // the pool leans on a higher open cap with a small idle reserve.
    db.SetMaxOpenConns(30)
    db.SetMaxIdleConns(10)
    db.SetConnMaxLifetime(30 * time.Minute)

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, err
    }
    return db, nil
}
