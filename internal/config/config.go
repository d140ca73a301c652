package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mark-szabo/carwash/internal/domain"
)

var (
	// ErrRead возвращается, когда файл конфигурации не удалось прочитать
	ErrRead = errors.New("config: failed to read file")

	// ErrParse возвращается при ошибке разбора TOML
	ErrParse = errors.New("config: failed to parse file")

	// ErrInvalid возвращается, когда значения конфигурации недопустимы
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Reservation ReservationConfig `toml:"reservation"`
	Calendar    CalendarConfig    `toml:"calendar"`
	Email       EmailConfig       `toml:"email"`
	Push        PushConfig        `toml:"push"`
	Bot         BotConfig         `toml:"bot"`
}

// ServerConfig HTTP сервер; таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig подключение к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig логирование; пустой File - вывод в stdout
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ReservationConfig параметры допуска бронирований
type ReservationConfig struct {
	TimeUnit                           int    `toml:"time_unit"`
	CarpetCleaningMultiplier           int    `toml:"carpet_cleaning_multiplier"`
	UserConcurrentReservationLimit     int    `toml:"user_concurrent_reservation_limit"`
	MinutesToAllowReserveInPast        int    `toml:"minutes_to_allow_reserve_in_past"`
	HoursAfterCompanyLimitIsNotChecked int    `toml:"hours_after_company_limit_is_not_checked"`
	TimeZone                           string `toml:"time_zone"`
	SlotsFile                          string `toml:"slots_file"`
	CompletionEmailDelaySeconds        int    `toml:"completion_email_delay_seconds"`
}

// CalendarConfig календарь владельца бронирования
type CalendarConfig struct {
	Enabled         bool   `toml:"enabled"`
	CredentialsFile string `toml:"credentials_file"`
}

// EmailConfig очередь писем в Redis
type EmailConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	QueueKey      string `toml:"queue_key"`
	From          string `toml:"from"`
}

// PushConfig сервис push-уведомлений
type PushConfig struct {
	URL     string  `toml:"url"`
	Timeout int     `toml:"timeout"` // секунды
	Rate    float64 `toml:"rate"`    // запросов в секунду, 0 - без ограничения
}

// BotConfig чат сотрудников мойки в Telegram
type BotConfig struct {
	Enabled     bool    `toml:"enabled"`
	Token       string  `toml:"token"`
	StaffChatID int64   `toml:"staff_chat_id"`
	Rate        float64 `toml:"rate"`
}

// Load читает TOML файл, подставляет переменные окружения, применяет значения по умолчанию и проверяет конфигурацию
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}
	return Parse(data)
}

// Parse разбирает содержимое конфигурации
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(os.ExpandEnv(string(data)), &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 30)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "carwash"
	}

	r := &c.Reservation
	setDefault(&r.TimeUnit, domain.DefaultTimeUnit)
	setDefault(&r.CarpetCleaningMultiplier, domain.DefaultCarpetCleaningMultiplier)
	setDefault(&r.UserConcurrentReservationLimit, domain.DefaultUserConcurrentReservationLimit)
	setDefault(&r.MinutesToAllowReserveInPast, domain.DefaultMinutesToAllowReserveInPast)
	setDefault(&r.HoursAfterCompanyLimitIsNotChecked, domain.DefaultHoursAfterCompanyLimitIsNotChecked)
	if r.TimeZone == "" {
		r.TimeZone = domain.DefaultTimeZoneID
	}
	if r.SlotsFile == "" {
		r.SlotsFile = "slots.yaml"
	}

	if c.Email.QueueKey == "" {
		c.Email.QueueKey = "carwash:emails"
	}
	setDefault(&c.Push.Timeout, 5)
}

// setDefault записывает def только в нулевое поле
func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// Validate отклоняет невозможные значения
func (c *Config) Validate() error {
	r := c.Reservation
	switch {
	case r.TimeUnit <= 0:
		return fmt.Errorf("%w: reservation.time_unit must be positive", ErrInvalid)
	case r.CarpetCleaningMultiplier < 1:
		return fmt.Errorf("%w: reservation.carpet_cleaning_multiplier must be at least 1", ErrInvalid)
	case r.UserConcurrentReservationLimit < 1:
		return fmt.Errorf("%w: reservation.user_concurrent_reservation_limit must be at least 1", ErrInvalid)
	case r.MinutesToAllowReserveInPast < 0:
		return fmt.Errorf("%w: reservation.minutes_to_allow_reserve_in_past must not be negative", ErrInvalid)
	case r.HoursAfterCompanyLimitIsNotChecked < 0 || r.HoursAfterCompanyLimitIsNotChecked > 24:
		return fmt.Errorf("%w: reservation.hours_after_company_limit_is_not_checked must be within 0..24", ErrInvalid)
	case r.CompletionEmailDelaySeconds < 0:
		return fmt.Errorf("%w: reservation.completion_email_delay_seconds must not be negative", ErrInvalid)
	}

	if _, err := time.LoadLocation(r.TimeZone); err != nil {
		return fmt.Errorf("%w: unknown reservation.time_zone %q", ErrInvalid, r.TimeZone)
	}

	if c.Calendar.Enabled && c.Calendar.CredentialsFile == "" {
		return fmt.Errorf("%w: calendar.credentials_file is required when calendar is enabled", ErrInvalid)
	}
	if c.Bot.Enabled && (c.Bot.Token == "" || c.Bot.StaffChatID == 0) {
		return fmt.Errorf("%w: bot.token and bot.staff_chat_id are required when bot is enabled", ErrInvalid)
	}
	return nil
}

// ReservationConfig параметры допуска в виде доменной модели
func (c *Config) ReservationConfig() domain.ReservationConfig {
	return domain.ReservationConfig{
		TimeUnit:                           c.Reservation.TimeUnit,
		CarpetCleaningMultiplier:           c.Reservation.CarpetCleaningMultiplier,
		UserConcurrentReservationLimit:     c.Reservation.UserConcurrentReservationLimit,
		MinutesToAllowReserveInPast:        c.Reservation.MinutesToAllowReserveInPast,
		HoursAfterCompanyLimitIsNotChecked: c.Reservation.HoursAfterCompanyLimitIsNotChecked,
		TimeZoneID:                         c.Reservation.TimeZone,
	}
}

// CompletionEmailDelay задержка письма о завершении мойки
func (c *Config) CompletionEmailDelay() time.Duration {
	return time.Duration(c.Reservation.CompletionEmailDelaySeconds) * time.Second
}
