// Package sysinfo detects host environment details for run records.
package sysinfo

import (
	"bufio"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"lifebench/internal/domain/execution"
)

// Detector probes the host once and serves the result from cache. The
// host does not change mid-process, so every record of a process shares
// the same environment.
type Detector struct {
	once sync.Once
	env  execution.Environment
}

// NewDetector creates a new host environment detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Capture returns the host environment. The first call probes the OS;
// later calls return the cached result.
func (d *Detector) Capture() execution.Environment {
	d.once.Do(func() {
		d.env = execution.Environment{
			Processor:     runtime.GOARCH,
			Architecture:  runtime.GOARCH,
			System:        runtime.GOOS,
			ProcessorName: detectProcessorName(),
		}
	})
	return d.env
}

// detectProcessorName resolves the marketing name of the CPU. Each OS
// exposes it differently; an empty string means the probe failed and the
// record carries no name.
func detectProcessorName() string {
	switch runtime.GOOS {
	case "linux":
		return cpuModelFromProcInfo("/proc/cpuinfo")
	case "darwin":
		out, err := exec.Command("sysctl", "-n", "machdep.cpu.brand_string").Output()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(out))
	case "windows":
		return strings.TrimSpace(os.Getenv("PROCESSOR_IDENTIFIER"))
	default:
		return ""
	}
}

// cpuModelFromProcInfo scans a /proc/cpuinfo style file for the first
// "model name" entry. ARM kernels omit the field, in which case the
// result is empty.
func cpuModelFromProcInfo(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "model name") {
			continue
		}
		if _, value, ok := strings.Cut(line, ":"); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Static is an EnvironmentProvider that returns fixed values. It keeps
// tests and deterministic replays independent of the machine they run on.
type Static struct {
	Env execution.Environment
}

// Capture returns the configured environment unchanged.
func (s Static) Capture() execution.Environment {
	return s.Env
}
