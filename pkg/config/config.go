package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	Log       LogConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Upload    UploadConfig
	SCI       SCIConfig
	Omie      OmieConfig
	SMTP      SMTPConfig
	Redis     RedisConfig
	Reconcile ReconcileConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// LogConfig nivel y archivo opcional para entradas de error.
type LogConfig struct {
	Level     string
	ErrorFile string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string

	// límites del pool; cero deja el valor por defecto de pgxpool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UploadConfig directorio temporal y límite de tamaño de las planillas recibidas.
type UploadConfig struct {
	Dir      string
	MaxBytes int
}

// SCIConfig constantes del layout de exportación a SCI Único.
type SCIConfig struct {
	CompanyCode    string
	CostCenterCode string
	ISSPercentage  decimal.Decimal
	PaymentDays    int
	DocumentType   int
}

// OmieConfig endpoint del ERP Omie. Las credenciales viven en la base (erp_credentials).
type OmieConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SMTPConfig servidor de correo para entregar los documentos exportados.
// Host vacío = los documentos solo se registran en el log.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	CC       []string
}

// RedisConfig Redis para el lock de ejecuciones de exportación. Addr vacío = lock en proceso.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ReconcileConfig política de reintento cuando un evento llega antes que la cuenta a pagar local.
type ReconcileConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, SCI_CODIGO_EMPRESA, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	iss, err := decimal.NewFromString(getString(v, "SCI_PORCENTAGEM_ISS", "0"))
	if err != nil {
		return nil, fmt.Errorf("SCI_PORCENTAGEM_ISS inválido: %w", err)
	}
	omieTimeout, err := time.ParseDuration(getString(v, "OMIE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("OMIE_TIMEOUT inválido: %w", err)
	}
	retryDelay, err := time.ParseDuration(getString(v, "RECONCILE_RETRY_DELAY", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("RECONCILE_RETRY_DELAY inválido: %w", err)
	}
	connLifetime, err := time.ParseDuration(getString(v, "DB_MAX_CONN_LIFETIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_CONN_LIFETIME inválido: %w", err)
	}
	connIdle, err := time.ParseDuration(getString(v, "DB_MAX_CONN_IDLE_TIME", "30m"))
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_CONN_IDLE_TIME inválido: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "comisiones-api"),
		},
		Log: LogConfig{
			Level:     getString(v, "LOG_LEVEL", "info"),
			ErrorFile: getString(v, "LOG_ERROR_FILE", ""),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "comisiones"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),

			MaxConns:        getInt(v, "DB_MAX_CONNS", 10),
			MinConns:        getInt(v, "DB_MIN_CONNS", 1),
			MaxConnLifetime: connLifetime,
			MaxConnIdleTime: connIdle,
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "comisiones-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Upload: UploadConfig{
			Dir:      getString(v, "UPLOAD_DIR", "uploads"),
			MaxBytes: getInt(v, "UPLOAD_MAX_BYTES", 10*1024*1024),
		},
		SCI: SCIConfig{
			CompanyCode:    getString(v, "SCI_CODIGO_EMPRESA", ""),
			CostCenterCode: getString(v, "SCI_CODIGO_CENTRO_CUSTO", ""),
			ISSPercentage:  iss,
			PaymentDays:    getInt(v, "SCI_DIAS_PAGAMENTO", 0),
			DocumentType:   getInt(v, "SCI_TIPO_DOCUMENTO", 1),
		},
		Omie: OmieConfig{
			BaseURL: getString(v, "OMIE_BASE_URL", "https://app.omie.com.br/api/v1"),
			Timeout: omieTimeout,
		},
		SMTP: SMTPConfig{
			Host:     getString(v, "SMTP_HOST", ""),
			Port:     getInt(v, "SMTP_PORT", 587),
			User:     getString(v, "SMTP_USER", ""),
			Password: getString(v, "SMTP_PASSWORD", ""),
			From:     getString(v, "SMTP_FROM", ""),
			CC:       splitList(getString(v, "SMTP_CC", "")),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Reconcile: ReconcileConfig{
			RetryAttempts: getInt(v, "RECONCILE_RETRY_ATTEMPTS", 3),
			RetryDelay:    retryDelay,
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
