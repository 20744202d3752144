package execution

// Environment describes the host a run executed on. Values are captured by
// an EnvironmentProvider and stored verbatim in the record.
type Environment struct {
	Processor     string `json:"processor"`      // Processor family, e.g. "x86_64"
	Architecture  string `json:"architecture"`   // Machine architecture, e.g. "amd64"
	System        string `json:"system"`         // Operating system, e.g. "linux"
	ProcessorName string `json:"processor_name"` // Marketing name, e.g. "AMD Ryzen 9 5950X"
}

// EnvironmentProvider supplies host descriptors for new records. Injecting
// the provider keeps the domain free of OS probing and lets tests pin fixed
// values.
type EnvironmentProvider interface {
	Capture() Environment
}
