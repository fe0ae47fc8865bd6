// Package sysstats sbírá základní stav hostitele a vlastního procesu
// pro health endpointy (gopsutil).
package sysstats

import (
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats je jeden "snímek" stavu systému.
type Stats struct {
	// CPULoad: vytížení CPU od posledního volání v procentech (0-100).
	CPULoad float64 `json:"cpuLoad"`

	// RamUsedMB = Total - Available (bez diskové cache, jinak by Linux vypadal pořád plný).
	RamUsedMB  float64 `json:"ramUsedMB"`
	RamTotalMB float64 `json:"ramTotalMB"`

	// ProcessRSSMB: fyzická paměť, kterou drží tato služba.
	ProcessRSSMB float64 `json:"processRssMB"`

	// Kořenový oddíl "/". V kontejneru je to overlay, gopsutil vrací podkladový FS.
	DiskUsedGB  float64 `json:"diskUsedGB"`
	DiskTotalGB float64 `json:"diskTotalGB"`
}

const (
	mb = 1024.0 * 1024.0
	gb = mb * 1024.0
)

// Collect nikdy nevrací chybu: co nejde změřit, zůstane nulové a zaloguje se.
// Health check nesmí spadnout jen proto, že kontejner nevidí /proc.
func Collect(logger *slog.Logger) Stats {
	var stats Stats

	// Interval 0 = porovnání s předchozím voláním, neblokuje request na 1s.
	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		stats.CPULoad = percentages[0]
	} else if err != nil {
		logger.Debug("cpu stats unavailable", "error", err)
	}

	if vMem, err := mem.VirtualMemory(); err == nil {
		stats.RamUsedMB = float64(vMem.Total-vMem.Available) / mb
		stats.RamTotalMB = float64(vMem.Total) / mb
	} else {
		logger.Debug("memory stats unavailable", "error", err)
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if memInfo, err := p.MemoryInfo(); err == nil {
			stats.ProcessRSSMB = float64(memInfo.RSS) / mb
		}
	} else {
		logger.Debug("process stats unavailable", "error", err)
	}

	if dStat, err := disk.Usage("/"); err == nil {
		stats.DiskUsedGB = float64(dStat.Used) / gb
		stats.DiskTotalGB = float64(dStat.Total) / gb
	} else {
		logger.Debug("disk stats unavailable", "error", err)
	}

	return stats
}
