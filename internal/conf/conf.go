package conf

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"walt/internal/flog"
)

// Conf is the top-level configuration for one of the three roles the core
// engine supports: client, server, endpoint.
type Conf struct {
	Role   string `yaml:"role"`
	Log    Log    `yaml:"log"`
	Core   Core   `yaml:"core"`
	TAP    *TAP   `yaml:"tap"`
	SSH    *SSH   `yaml:"ssh"`
	Server Server `yaml:"server"`
}

var validRoles = []string{"client", "server", "endpoint"}

func LoadFromFile(path string) (*Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var conf Conf

	if err := yaml.Unmarshal(data, &conf); err != nil {
		return &conf, err
	}

	if !slices.Contains(validRoles, conf.Role) {
		return nil, fmt.Errorf("role must be one of %s", strings.Join(validRoles, ", "))
	}

	conf.setDefaults()
	if err := conf.validate(); err != nil {
		return &conf, err
	}

	return &conf, nil
}

func (c *Conf) setDefaults() {
	c.Log.setDefaults()
	c.Core.setDefaults()
	if c.TAP != nil {
		c.TAP.setDefaults()
	}
	if c.SSH != nil {
		c.SSH.setDefaults()
	}
	c.Server.setDefaults()
}

func (c *Conf) validate() error {
	var allErrors []error

	allErrors = append(allErrors, c.Log.validate()...)
	allErrors = append(allErrors, c.Core.validate()...)

	switch c.Role {
	case "client":
		if c.TAP == nil {
			allErrors = append(allErrors, fmt.Errorf("client role requires a tap section"))
		} else {
			allErrors = append(allErrors, c.TAP.validate()...)
		}
		if c.SSH == nil {
			allErrors = append(allErrors, fmt.Errorf("client role requires an ssh section"))
		} else {
			allErrors = append(allErrors, c.SSH.validate()...)
		}
	case "endpoint":
		if c.TAP == nil {
			allErrors = append(allErrors, fmt.Errorf("endpoint role requires a tap section"))
		} else {
			allErrors = append(allErrors, c.TAP.validate()...)
		}
		if c.SSH != nil {
			flog.Warnf("ssh section is ignored for the endpoint role, which inherits its channel from the invoking shell")
		}
	case "server":
		allErrors = append(allErrors, c.Server.validate()...)
		if c.TAP != nil {
			flog.Warnf("tap section is ignored for the server role; each session's tap device is assigned by the orchestrator")
		}
	}

	return writeErr(allErrors)
}

func writeErr(allErrors []error) error {
	if len(allErrors) > 0 {
		var messages []string
		for _, err := range allErrors {
			messages = append(messages, err.Error())
		}
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(messages, "\n  - "))
	}
	return nil
}
