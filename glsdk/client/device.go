package client

import (
	"strings"

	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/glasslab/go-glsdk/glsdk/constants"
	"github.com/glasslab/go-glsdk/glsdk/storage"
	"github.com/oklog/ulid/v2"
)

// resolveDeviceID picks the device id of this installation. An explicitly configured id wins,
// then the one persisted by a previous run. A new id is generated and persisted otherwise.
func resolveDeviceID(configured string, localStorage storage.LocalStorage) (string, error) {
	configured = strings.TrimSpace(configured)
	if configured != "" && configured != conf.DefaultDeviceID {
		return configured, nil
	}

	stored, ok, err := localStorage.Get(constants.DeviceIDKey)
	if err != nil {
		return "", err
	}
	if ok && stored != "" {
		return stored, nil
	}

	deviceID := ulid.Make().String()
	if err := localStorage.Set(constants.DeviceIDKey, deviceID); err != nil {
		return "", err
	}
	return deviceID, nil
}
