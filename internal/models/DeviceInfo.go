package models

// DeviceInfo describes the last scale that delivered a measurement. It is a
// single record, overwritten on every connection.
type DeviceInfo struct {
	LastConnectedDevice *string  `json:"lastConnectedDevice"`
	LastConnectionTime  *string  `json:"lastConnectionTime"`
	BatteryLevel        *float64 `json:"batteryLevel"`
}
