// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig
// handles framework-level settings like HTTP ports, TLS, logging, and
// CORS. Everything specific to MemberHub lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Authentication configuration
	JWTSecret  string        // HMAC secret for signing session tokens (must be strong in production)
	SessionTTL time.Duration // How long issued session tokens stay valid
	ResetTTL   time.Duration // How long password-reset tokens stay valid
	BcryptCost int           // bcrypt work factor for password hashing

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty disables auth)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@memberhub.com)
	MailFromName string // From display name
	MailEnabled  bool   // When false, outbound mail is logged instead of sent

	// File storage configuration
	FilesBaseURL string // Base URL stored file ids are expanded under

	// Base URL for links in outbound email (password reset)
	BaseURL  string
	SiteName string // Display name used in email subjects and bodies

	// Admin bootstrap
	AdminEmail string // Email of the admin user (promoted/created on startup)
}
