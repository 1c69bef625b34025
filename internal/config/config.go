package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"
    "time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Gateway credentials are
// optional at startup: payment initiation fails with a configuration
// error when they are missing, everything else keeps working.
type Config struct {
    Env    string // application environment (e.g. "dev", "prod")
    Port   string // HTTP port to listen on
    DBUser string // database username
    DBPass string // database password (optional)
    DBHost string // database host address
    DBPort string // database port number
    DBName string // database name

    JWTSecret    string // secret used to sign JWTs
    AccessTTLMin int    // access token time-to-live in minutes
    BcryptCost   int    // bcrypt cost for password hashing

    SeatLockTTL         time.Duration // lifetime of a seat claim
    LockReclaimInterval time.Duration // how often the reclaimer sweeps

    AMQPURL    string // RabbitMQ URL for the audit side-channel (optional)
    AppBaseURL string // frontend base URL used in payment redirects

    CCAvenueMerchantID  string // merchant account id (optional)
    CCAvenueWorkingKey  string // encryption working key (optional)
    CCAvenueAccessCode  string // hosted-page access code (optional)
    CCAvenueBaseURL     string // gateway transaction URL
    CCAvenueRedirectURL string // where the gateway posts the callback (optional)
    CCAvenueCancelURL   string // where the gateway sends cancellations (optional)
}

// Load reads configuration from environment variables.  Required
// variables are enforced by must() and missing values cause the
// program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:    envStr("APP_ENV", "dev"),
        Port:   must("APP_PORT"),
        DBUser: must("DB_USER"),
        DBPass: os.Getenv("DB_PASS"),
        DBHost: must("DB_HOST"),
        DBPort: must("DB_PORT"),
        DBName: must("DB_NAME"),

        JWTSecret:    must("JWT_SECRET"),
        AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),
        BcryptCost:   envInt("BCRYPT_COST", 10),

        SeatLockTTL:         time.Duration(envInt("SEAT_LOCK_TTL_SECONDS", 600)) * time.Second,
        LockReclaimInterval: envDur("LOCK_RECLAIM_INTERVAL", 2*time.Minute),

        AMQPURL:    envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
        AppBaseURL: os.Getenv("APP_BASE_URL"),

        CCAvenueMerchantID:  os.Getenv("CCAVENUE_MERCHANT_ID"),
        CCAvenueWorkingKey:  os.Getenv("CCAVENUE_WORKING_KEY"),
        CCAvenueAccessCode:  os.Getenv("CCAVENUE_ACCESS_CODE"),
        CCAvenueBaseURL:     envStr("CCAVENUE_BASE_URL", "https://secure.ccavenue.com/transaction/transaction.do"),
        CCAvenueRedirectURL: os.Getenv("CCAVENUE_REDIRECT_URL"),
        CCAvenueCancelURL:   os.Getenv("CCAVENUE_CANCEL_URL"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}
