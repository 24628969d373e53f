package discovery

import (
	"fmt"

	"github.com/hashicorp/consul/api"
)

// ServiceRegistry registers this process with a Consul agent.
type ServiceRegistry struct {
	client      *api.Client
	serviceName string
	serviceID   string
	serviceHost string
	servicePort int
}

// NewServiceRegistry creates a registry. No request is made until Register.
func NewServiceRegistry(consulAddress, serviceName, serviceID, serviceHost string, servicePort int) (*ServiceRegistry, error) {
	config := api.DefaultConfig()
	config.Address = consulAddress

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	return &ServiceRegistry{
		client:      client,
		serviceName: serviceName,
		serviceID:   serviceID,
		serviceHost: serviceHost,
		servicePort: servicePort,
	}, nil
}

// Registration describes what Register sends to the agent.
func (sr *ServiceRegistry) Registration() *api.AgentServiceRegistration {
	host := sr.serviceHost
	if host == "" || host == "0.0.0.0" {
		host = sr.serviceName
	}
	return &api.AgentServiceRegistration{
		ID:   sr.serviceID,
		Name: sr.serviceName,
		Port: sr.servicePort,
		Tags: []string{"jobs", "candidates", "hotlists"},
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", host, sr.servicePort),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}

func (sr *ServiceRegistry) Register() error {
	if err := sr.client.Agent().ServiceRegister(sr.Registration()); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	if err := sr.client.Agent().ServiceDeregister(sr.serviceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	return nil
}
