package chat

import (
	"fmt"
	"strings"
)

const (
	DefaultCapacity    = 10
	DefaultBufferSize  = 1024
	DefaultExitCommand = "SAIR"
)

type Config struct {
	// Capacity bounds both the registry and the admission gate.
	Capacity int
	// BufferSize is the largest chunk read from a client at once.
	BufferSize  int
	ExitCommand string
}

func DefaultConfig() Config {
	return Config{
		Capacity:    DefaultCapacity,
		BufferSize:  DefaultBufferSize,
		ExitCommand: DefaultExitCommand,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	case c.BufferSize <= 0:
		return fmt.Errorf("%w: buffer size must be positive, got %d", ErrInvalidConfig, c.BufferSize)
	case strings.TrimSpace(c.ExitCommand) == "":
		return fmt.Errorf("%w: exit command is empty", ErrInvalidConfig)
	}
	return nil
}

// normalizeCapacity maps a non-positive capacity to the default so a registry
// and a gate built from the same value always agree.
func normalizeCapacity(n int) int {
	if n <= 0 {
		return DefaultCapacity
	}
	return n
}

func (c Config) welcome() []byte {
	return []byte("=== Welcome to the TCP chat! ===\n" +
		"Type messages and they will be sent to everyone.\n" +
		"Type '" + c.ExitCommand + "' to leave.\n")
}

var (
	goodbyeMessage = []byte("Goodbye! Closing your connection.\n")
	rejectMessage  = []byte("ERR server full\n")
)
