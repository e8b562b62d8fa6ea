package session

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ManagerConfig contains configuration for creating a session manager
type ManagerConfig struct {
	// Client is required for redis managers
	Client *redis.Client
	// Prefix namespaces all redis keys
	Prefix string
	// TTL bounds how long session state lives; zero keeps it until
	// removed
	TTL time.Duration
}

// NewManager creates a new session manager based on the backend type
func NewManager(backendType string, config ManagerConfig) (Manager, error) {
	switch backendType {
	case "redis":
		if config.Client == nil {
			return nil, fmt.Errorf("client required for redis manager")
		}
		return NewRedisManager(config.Client, config.Prefix, config.TTL), nil
	case "memory", "inmem":
		return NewMemoryManager(config.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s (supported: redis, memory)", backendType)
	}
}
