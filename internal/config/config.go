/**
 * @description
 * Configuration management for the Cegnal API. Uses viper to load settings
 * from environment variables with sensible defaults for local development.
 */
package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	AMQPURL     string `mapstructure:"AMQP_URL"`

	JWTSecret     string `mapstructure:"JWT_SECRET"`
	TokenTTLHours int    `mapstructure:"TOKEN_TTL_HOURS"`

	PaystackBaseURL    string `mapstructure:"PAYSTACK_BASE_URL"`
	PaystackSecretKey  string `mapstructure:"PAYSTACK_SECRET_KEY"`
	PaymentCallbackURL string `mapstructure:"PAYMENT_CALLBACK_URL"`

	ResendAPIKey  string `mapstructure:"RESEND_API_KEY"`
	EmailFrom     string `mapstructure:"EMAIL_FROM"`
	EmailFromName string `mapstructure:"EMAIL_FROM_NAME"`

	ZoneCacheTTLMinutes  int    `mapstructure:"ZONE_CACHE_TTL_MINUTES"`
	OTPTTLMinutes        int    `mapstructure:"OTP_TTL_MINUTES"`
	OTPResendCooldownSec int    `mapstructure:"OTP_RESEND_COOLDOWN_SEC"`
	PaymentExpirySched   string `mapstructure:"PAYMENT_EXPIRY_SCHEDULE"`
	PaymentExpiryHours   int    `mapstructure:"PAYMENT_EXPIRY_HOURS"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("TOKEN_TTL_HOURS", 24)
	viper.SetDefault("PAYSTACK_BASE_URL", "")
	viper.SetDefault("ZONE_CACHE_TTL_MINUTES", 5)
	viper.SetDefault("OTP_TTL_MINUTES", 10)
	viper.SetDefault("OTP_RESEND_COOLDOWN_SEC", 60)
	viper.SetDefault("PAYMENT_EXPIRY_SCHEDULE", "@every 1h")
	viper.SetDefault("PAYMENT_EXPIRY_HOURS", 24)
	viper.AutomaticEnv()

	// Bind environment variables explicitly so they appear in Unmarshal.
	for _, key := range []string{
		"SERVER_PORT", "DATABASE_URL", "REDIS_URL", "AMQP_URL",
		"JWT_SECRET", "TOKEN_TTL_HOURS",
		"PAYSTACK_BASE_URL", "PAYSTACK_SECRET_KEY", "PAYMENT_CALLBACK_URL",
		"RESEND_API_KEY", "EMAIL_FROM", "EMAIL_FROM_NAME",
		"ZONE_CACHE_TTL_MINUTES", "OTP_TTL_MINUTES", "OTP_RESEND_COOLDOWN_SEC",
		"PAYMENT_EXPIRY_SCHEDULE", "PAYMENT_EXPIRY_HOURS",
	} {
		_ = viper.BindEnv(key)
	}

	err = viper.Unmarshal(&config)
	return
}
