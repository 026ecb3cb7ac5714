package core

import (
	"context"
	"fmt"
	"log"
)

// Interface defines a common interface for all services
type Interface interface {
	Start(ctx context.Context) error
	Stop()
}

type registered struct {
	name    string
	service Interface
}

// Registry manages service lifecycles: services start in registration
// order and stop in reverse
type Registry struct {
	services []registered
}

// NewRegistry creates a new service registry
func NewRegistry() *Registry {
	return &Registry{
		services: make([]registered, 0),
	}
}

// Register adds a named service to the registry
func (sr *Registry) Register(name string, service Interface) {
	sr.services = append(sr.services, registered{name: name, service: service})
}

// StartAll starts all registered services in registration order. The
// first failure aborts the sequence; already started services are left
// for StopAll.
func (sr *Registry) StartAll(ctx context.Context) error {
	for _, entry := range sr.services {
		if err := entry.service.Start(ctx); err != nil {
			return fmt.Errorf("starting %s: %w", entry.name, err)
		}
		log.Printf("Core: started %s", entry.name)
	}
	return nil
}

// StopAll stops all registered services in reverse order
func (sr *Registry) StopAll() {
	for i := len(sr.services) - 1; i >= 0; i-- {
		sr.services[i].service.Stop()
		log.Printf("Core: stopped %s", sr.services[i].name)
	}
}
