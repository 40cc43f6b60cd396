package storage

const (
	KeyWeightLogs  = "weight_logs"
	KeyLastSync    = "last_sync"
	KeyPendingSync = "pending_sync"
	KeyUserData    = "user_data"
	KeyDeviceInfo  = "device_info"
)

// OwnedKeys lists every key the offline store writes. pending_sync is never
// written but is still removed by ClearAll and counted by the accounting.
var OwnedKeys = []string{
	KeyWeightLogs,
	KeyLastSync,
	KeyPendingSync,
	KeyUserData,
	KeyDeviceInfo,
}
