package providers

import (
	"errors"
	"weightsync/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	if cv.conf.Storage.Driver != "memory" && cv.conf.Storage.Path == "" {
		return errors.New("storage.path is required for the " + cv.conf.Storage.Driver + " driver")
	}
	if cv.conf.MQTT.Enabled && cv.conf.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required when mqtt is enabled")
	}
	return nil
}
