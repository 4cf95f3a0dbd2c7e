// Package config reads the configuration of a simulated robot and its docking service.
package config

import (
	"go.viam.com/dock/robot/fake"
	"go.viam.com/dock/services/docking"
)

// Config describes how to run docking against a robot.
type Config struct {
	ConfigFilePath string       `json:"-"`
	Debug          bool         `json:"debug,omitempty"`
	MetricsAddress string       `json:"metrics_address,omitempty"`
	Robot          AttributeMap `json:"robot,omitempty"`
	Docking        AttributeMap `json:"docking,omitempty"`

	// Decoded from Robot and Docking by FromReader.
	RobotConfig   fake.Config    `json:"-"`
	DockingConfig docking.Config `json:"-"`
}

// Ensure ensures all parts of the config are valid.
func (c *Config) Ensure() error {
	if err := c.RobotConfig.Validate("robot"); err != nil {
		return err
	}
	return c.DockingConfig.Validate("docking")
}
