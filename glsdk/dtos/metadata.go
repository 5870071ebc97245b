package dtos

// Metadata identifies the SDK instance issuing requests
type Metadata struct {
	SDKVersion  string
	MachineIP   string
	MachineName string
}
