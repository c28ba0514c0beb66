// Package model holds the sample services of the gofac demo application.
// Importing it marks every service in discovery.Default.
package model

import (
	"github.com/Ngone6325/gofac/v2"
	"github.com/Ngone6325/gofac/v2/discovery"
)

func init() {
	if err := RegisterServices(discovery.Default); err != nil {
		panic(err)
	}
}

// RegisterServices adds the sample contracts and services to c, in the
// order discovery visits them.
func RegisterServices(c *discovery.Catalog) error {
	steps := []func(*discovery.Catalog) error{
		discovery.ContractIn[IUserRepo],
		discovery.ContractIn[IUserService],
		discovery.ContractIn[IUserLog],
		discovery.ContractIn[IContractService],
		discovery.ContractIn[ISimpleFileService],
		discovery.ContractIn[IHealthService],

		// contract inferred from the universe above
		func(c *discovery.Catalog) error {
			return discovery.RegisterIn[*UserRepo](c,
				discovery.WithLifetime(gofac.Singleton),
				discovery.WithConstructor(NewUserRepo))
		},
		func(c *discovery.Catalog) error {
			return discovery.RegisterIn[*UserService](c,
				discovery.As[IUserService](),
				discovery.WithLifetime(gofac.Transient),
				discovery.WithConstructor(NewUserService))
		},
		discovery.ConsiderIn[*UserLog],
		func(c *discovery.Catalog) error {
			return discovery.RegisterIn[*ContractService](c,
				discovery.WithConstructor(NewContractService))
		},
		func(c *discovery.Catalog) error {
			return discovery.RegisterIn[*SimpleFileService](c,
				discovery.AsNamed("model.ISimpleFileService"),
				discovery.WithLifetime(gofac.Singleton),
				discovery.WithConstructor(NewSimpleFileService))
		},
		discovery.ConsiderIn[*HealthService],
	}
	for _, step := range steps {
		if err := step(c); err != nil {
			return err
		}
	}
	return nil
}
