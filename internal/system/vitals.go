// Package system samples host vitals for the dashboard's system panel
// and keeps a short rolling history of them.
package system

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// cpuSampleWindow is how long a CPU reading averages over. Long enough
// to be stable, well under the 30 s poll cadence.
const cpuSampleWindow = time.Second

// Vitals is one point-in-time reading of host resource usage, the unit
// the rolling series and the sqlite vitals log both store.
type Vitals struct {
	CPUPercent  float64 `json:"cpuPercent"`
	MemPercent  float64 `json:"memPercent"`
	DiskPercent float64 `json:"diskPercent"`
}

// HostInfo describes the machine the dashboard runs on.
type HostInfo struct {
	Hostname      string  `json:"hostname"`
	Platform      string  `json:"platform"`
	UptimeSeconds uint64  `json:"uptimeSeconds"`
	Processes     uint64  `json:"processes"`
	Load1         float64 `json:"load1"`
	Load5         float64 `json:"load5"`
	Load15        float64 `json:"load15"`
}

// GetVitals samples resource usage. It blocks for cpuSampleWindow, so it
// belongs on the background poller, never on a request path.
func GetVitals() (*Vitals, error) {
	v := &Vitals{}

	cpuPercents, err := cpu.Percent(cpuSampleWindow, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read CPU usage: %w", err)
	}
	if len(cpuPercents) > 0 {
		v.CPUPercent = cpuPercents[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to read memory usage: %w", err)
	}
	v.MemPercent = memStat.UsedPercent

	diskStat, err := disk.Usage("/")
	if err != nil {
		return nil, fmt.Errorf("failed to read disk usage: %w", err)
	}
	v.DiskPercent = diskStat.UsedPercent

	return v, nil
}

// GetHostInfo reads the host facts shown alongside the vitals. Load
// averages are unavailable on some platforms; they stay zero there
// rather than failing the whole read.
func GetHostInfo() (*HostInfo, error) {
	stat, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read host info: %w", err)
	}

	info := &HostInfo{
		Hostname:      stat.Hostname,
		Platform:      stat.Platform,
		UptimeSeconds: stat.Uptime,
		Processes:     stat.Procs,
	}
	if stat.PlatformVersion != "" {
		info.Platform = stat.Platform + " " + stat.PlatformVersion
	}

	if avg, err := load.Avg(); err == nil {
		info.Load1 = avg.Load1
		info.Load5 = avg.Load5
		info.Load15 = avg.Load15
	}

	return info, nil
}
