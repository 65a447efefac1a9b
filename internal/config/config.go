package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Хранилища объявлений и контактов.
const (
	StoragePostgres = "postgres"
	StorageFile     = "file"
	StorageMinio    = "minio"
)

type Config struct {
	Env            string `env:"ENV" env-default:"local"`
	StorageBackend string `env:"STORAGE_BACKEND" env-default:"file"`
	DatabaseURL    string `env:"DATABASE_URL"`
	SnapshotDir    string `env:"SNAPSHOT_DIR" env-default:"./data"`
	HTTP           HTTPConfig
	GRPC           GRPCConfig
	Admin          AdminConfig
	Minio          MinioConfig
	Match          MatchConfig
}

type HTTPConfig struct {
	Port         int           `env:"HTTP_PORT" env-default:"3001"`
	Timeout      time.Duration `env:"HTTP_TIMEOUT" env-default:"15s"`
	ClientOrigin string        `env:"CLIENT_ORIGIN" env-default:"http://localhost:5173"`
}

type GRPCConfig struct {
	Port    int           `env:"GRPC_PORT" env-default:"44044"`
	Timeout time.Duration `env:"GRPC_TIMEOUT" env-default:"10s"`
}

// AdminConfig — единственная учётная запись администратора.
type AdminConfig struct {
	Email        string        `env:"ADMIN_EMAIL" env-required:"true"`
	PasswordHash string        `env:"ADMIN_PW_HASH" env-required:"true"`
	JWTSecret    string        `env:"ADMIN_JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `env:"ADMIN_JWT_TTL" env-default:"2h"`
	// LoginRate — попыток входа в минуту, 0 отключает ограничение.
	LoginRate int `env:"LOGIN_RATE" env-default:"10"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	Bucket    string `env:"MINIO_BUCKET"`
	Prefix    string `env:"MINIO_PREFIX"`
	AccessKey string `env:"MINIO_USER"`
	SecretKey string `env:"MINIO_PASSWORD"`
	UseSSL    bool   `env:"MINIO_USE_SSL"`
}

// MatchConfig — параметры подбора объявлений.
type MatchConfig struct {
	// BudgetTolerance — допуск бюджета в обе стороны (0.5 = ±50%).
	BudgetTolerance float64 `env:"MATCH_BUDGET_TOLERANCE" env-default:"0.5"`
	DefaultTop      int     `env:"MATCH_DEFAULT_TOP" env-default:"5"`
	HTTPDefaultTop  int     `env:"MATCH_HTTP_DEFAULT_TOP" env-default:"8"`
	// FetchTimeout ограничивает загрузку объявлений, 0 — без ограничения.
	FetchTimeout time.Duration `env:"MATCH_FETCH_TIMEOUT" env-default:"5s"`
}

// MustLoad читает конфиг из окружения, а при заданном CONFIG_PATH сначала из файла.
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic("cannot read config: " + err.Error())
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, err
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
