// Package hmackey generates signing keys for the credential verifier.
package hmackey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
)

const envVar = "CROWDVAULT_AUTH_HMAC_KEY"

// Config controls key generation.
type Config struct {
	// Bytes is the number of random bytes in the key.
	Bytes int
	// Raw prints the bare hex key instead of an env assignment.
	Raw bool
}

// ParseConfig parses command line flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: 32}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes (default: 32)")
	fs.BoolVar(&cfg.Raw, "raw", cfg.Raw, "print only the hex key")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Generate draws size random bytes from reader and returns them hex
// encoded. A nil reader falls back to crypto/rand.
func Generate(size int, reader io.Reader) (string, error) {
	if size <= 0 {
		return "", errors.New("key size must be greater than zero")
	}
	if reader == nil {
		reader = rand.Reader
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return "", fmt.Errorf("draw random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Run generates a key and writes it to out, either as a bare hex string
// or as a ready-to-paste env assignment.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	key, err := Generate(cfg.Bytes, reader)
	if err != nil {
		return err
	}
	if cfg.Raw {
		_, err = fmt.Fprintln(out, key)
		return err
	}
	_, err = fmt.Fprintf(out, "%s=%s\n", envVar, key)
	return err
}
