package password

import "github.com/sarahsindone/sbrp-application/config"

// Config holds Argon2id hashing parameters for user passwords.
type Config struct {
	// Algorithm must be "argon2id"; empty means argon2id.
	Algorithm string

	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// LowMemoryMode caps memory at 32 MiB.
	LowMemoryMode bool
}

// DefaultConfig returns OWASP-recommended defaults for password hashing
func DefaultConfig() Config {
	return Config{
		Algorithm:   "argon2id",
		MemoryKiB:   64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Params resolves the config into hashing parameters. Zero fields take the
// default.
func (c Config) Params() Params {
	def := DefaultConfig()
	p := Params{
		Memory:      or(c.MemoryKiB, def.MemoryKiB),
		Iterations:  or(c.Iterations, def.Iterations),
		Parallelism: or(c.Parallelism, def.Parallelism),
		SaltLength:  or(c.SaltLength, def.SaltLength),
		KeyLength:   or(c.KeyLength, def.KeyLength),
	}
	if c.LowMemoryMode && p.Memory > 32*1024 {
		p.Memory = 32 * 1024
		p.Iterations++ // compensate for the smaller memory cost
	}
	return p
}

// FromCentralConfig converts central config.PasswordConfig to package Config
func FromCentralConfig(c config.PasswordConfig) Config {
	return Config{
		Algorithm:     c.Algorithm,
		MemoryKiB:     c.MemoryKiB,
		Iterations:    c.Iterations,
		Parallelism:   c.Parallelism,
		SaltLength:    c.SaltLength,
		KeyLength:     c.KeyLength,
		LowMemoryMode: c.LowMemoryMode,
	}
}

func or[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
