// Package admintoken mints operator credentials from the vault signing
// key so deployments can bootstrap admin access without a login flow.
package admintoken

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/louisbranch/crowdvault/internal/auth/credential"
	"github.com/louisbranch/crowdvault/internal/platform/id"
)

// Config holds configuration for admin token minting.
type Config struct {
	Subject string
	TTL     time.Duration
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{TTL: time.Hour}
	fs.StringVar(&cfg.Subject, "subject", cfg.Subject, "operator identity the token is issued to")
	fs.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "token lifetime (default: 1h)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run mints the token and writes it to out. The signing key, issuer and
// audience come from the CROWDVAULT_AUTH_* environment the vault service
// itself reads, so minted tokens always match the running verifier.
func Run(cfg Config, out io.Writer, now func() time.Time) error {
	if cfg.Subject == "" {
		return errors.New("subject is required")
	}
	if cfg.TTL <= 0 {
		return errors.New("ttl must be greater than zero")
	}
	if out == nil {
		return errors.New("output is required")
	}
	if now == nil {
		now = time.Now
	}

	creds, err := credential.LoadConfigFromEnv(now)
	if err != nil {
		return fmt.Errorf("load credential config: %w", err)
	}

	jwtID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("generate token id: %w", err)
	}
	token, err := credential.Issue(creds, cfg.Subject, jwtID, []string{credential.ScopeAdmin}, cfg.TTL)
	if err != nil {
		return fmt.Errorf("issue credential: %w", err)
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
