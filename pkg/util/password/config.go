package password

import "github.com/medvault/medvault_backend/config"

// Config holds Argon2id password hashing parameters
type Config struct {
	// Memory usage in KiB (64 MiB default, OWASP recommended)
	MemoryKiB uint32

	// Number of iterations (3 default, OWASP recommended)
	Iterations uint32

	// Degree of parallelism (2 default, OWASP recommended)
	Parallelism uint8

	// Length of random salt in bytes (16 default)
	SaltLength uint32

	// Length of derived key in bytes (32 default)
	KeyLength uint32
}

// ToParams converts Config to Params for the password package
func (c Config) ToParams() *Params {
	return &Params{
		Memory:      c.MemoryKiB,
		Iterations:  c.Iterations,
		Parallelism: c.Parallelism,
		SaltLength:  c.SaltLength,
		KeyLength:   c.KeyLength,
	}
}

// DefaultConfig returns OWASP-recommended defaults for password hashing
func DefaultConfig() Config {
	return Config{
		MemoryKiB:   64 * 1024, // 64 MiB
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// FromCentralConfig converts central config.PasswordConfig to package Config
func FromCentralConfig(c config.PasswordConfig) Config {
	out := Config{
		MemoryKiB:   c.MemoryKiB,
		Iterations:  c.Iterations,
		Parallelism: c.Parallelism,
		SaltLength:  c.SaltLength,
		KeyLength:   c.KeyLength,
	}
	def := DefaultConfig()
	if out.MemoryKiB == 0 {
		out.MemoryKiB = def.MemoryKiB
	}
	if out.Iterations == 0 {
		out.Iterations = def.Iterations
	}
	if out.Parallelism == 0 {
		out.Parallelism = def.Parallelism
	}
	if out.SaltLength == 0 {
		out.SaltLength = def.SaltLength
	}
	if out.KeyLength == 0 {
		out.KeyLength = def.KeyLength
	}
	return out
}
