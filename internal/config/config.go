package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The struct is built once in main and passed by
// value to the components that need it; nothing reads the environment after
// startup.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	UnitPriceCents uint32 // price of a single seat in cents
	AdminOverride  bool   // whether admins may cancel any reservation
	PosterDir      string // directory where uploaded posters are written
	PosterBaseURL  string // public URL prefix for uploaded posters
	SMTPAddr       string // SMTP host:port for outgoing mail (empty disables delivery)
	SMTPFrom       string // From address for outgoing mail
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Optional variables
// fall back to defaults that match a local development setup.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),      // environment (dev/test/prod)
		Port:           must("APP_PORT"),     // port to bind the HTTP server
		DBUser:         must("DB_USER"),      // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),      // database host
		DBPort:         must("DB_PORT"),      // database port
		DBName:         must("DB_NAME"),      // database name
		JWTSecret:      must("JWT_SECRET"),   // secret used for signing JWTs
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		UnitPriceCents: uint32(positiveInt("UNIT_PRICE_CENTS", "1000")), // $10 per seat
		AdminOverride:  getenv("ADMIN_CANCEL_OVERRIDE", "true") == "true",
		PosterDir:      getenv("POSTER_DIR", "data/posters"),
		PosterBaseURL:  getenv("POSTER_BASE_URL", "/static/posters"),
		SMTPAddr:       os.Getenv("SMTP_ADDR"),
		SMTPFrom:       getenv("SMTP_FROM", "no-reply@cinereserve.local"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// positiveInt reads an optional integer env var with a default, exiting
// when the value is malformed or not positive. A silent zero here would
// make every seat free.
func positiveInt(key, def string) int {
	s := getenv(key, def)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		log.Fatalf("invalid positive int for %s: %q", key, s)
	}
	return n
}
