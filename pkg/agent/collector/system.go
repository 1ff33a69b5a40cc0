package collector

import (
	"time"

	"github.com/dushixiang/swallow/internal/protocol"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	gopsutilnet "github.com/shirou/gopsutil/v4/net"
)

// SystemCollector 系统指标采集器
// 网络速率由两次采集之间的计数器差值推算，首次采集速率为 0。
type SystemCollector struct {
	lastUpload   uint64
	lastDownload uint64
	lastSampleAt time.Time
}

func NewSystemCollector() *SystemCollector {
	return &SystemCollector{}
}

// Collect 采集一次完整的系统指标
func (c *SystemCollector) Collect() (*protocol.MetricReport, error) {
	now := time.Now()
	timestamp := now.UnixMilli()

	cpuReport, err := c.collectCPU()
	if err != nil {
		return nil, err
	}
	memoryReport, err := c.collectMemory()
	if err != nil {
		return nil, err
	}
	diskReport, err := c.collectDisk()
	if err != nil {
		return nil, err
	}
	networkReport, err := c.collectNetwork(now)
	if err != nil {
		return nil, err
	}

	uptime, err := host.Uptime()
	if err != nil {
		return nil, err
	}

	return &protocol.MetricReport{
		Timestamp: &timestamp,
		CPU:       cpuReport,
		Memory:    memoryReport,
		Disk:      diskReport,
		Network:   networkReport,
		Uptime:    &uptime,
	}, nil
}

func (c *SystemCollector) collectCPU() (*protocol.CPUReport, error) {
	percents, err := cpu.Percent(time.Second, false)
	if err != nil {
		return nil, err
	}

	report := &protocol.CPUReport{
		LoadAvg: []float64{0, 0, 0},
	}
	if len(percents) > 0 {
		report.UsagePercent = percents[0]
	}
	// 负载在 Windows 上不可用，采集失败时保持为 0
	if loadAvg, err := load.Avg(); err == nil && loadAvg != nil {
		report.LoadAvg = []float64{loadAvg.Load1, loadAvg.Load5, loadAvg.Load15}
	}
	return report, nil
}

func (c *SystemCollector) collectMemory() (*protocol.MemoryReport, error) {
	virtualMemory, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}
	return &protocol.MemoryReport{
		Total:        virtualMemory.Total,
		Used:         virtualMemory.Used,
		Free:         virtualMemory.Available,
		UsagePercent: virtualMemory.UsedPercent,
	}, nil
}

// collectDisk 汇总全部物理分区的容量
func (c *SystemCollector) collectDisk() (*protocol.DiskReport, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}

	report := &protocol.DiskReport{}
	for _, partition := range partitions {
		usage, err := disk.Usage(partition.Mountpoint)
		if err != nil {
			continue
		}
		report.Total += usage.Total
		report.Used += usage.Used
		report.Free += usage.Free
	}
	if report.Total > 0 {
		report.UsagePercent = float64(report.Used) * 100 / float64(report.Total)
	}
	return report, nil
}

func (c *SystemCollector) collectNetwork(now time.Time) (*protocol.NetworkReport, error) {
	counters, err := gopsutilnet.IOCounters(false)
	if err != nil {
		return nil, err
	}

	report := &protocol.NetworkReport{}
	if len(counters) > 0 {
		report.TotalUpload = counters[0].BytesSent
		report.TotalDownload = counters[0].BytesRecv
	}

	// 用两次采集的差值推算速率，计数器回绕（网卡重置）时速率置 0
	if !c.lastSampleAt.IsZero() {
		elapsed := now.Sub(c.lastSampleAt).Seconds()
		if elapsed > 0 && report.TotalUpload >= c.lastUpload && report.TotalDownload >= c.lastDownload {
			report.UploadSpeed = uint64(float64(report.TotalUpload-c.lastUpload) / elapsed)
			report.DownloadSpeed = uint64(float64(report.TotalDownload-c.lastDownload) / elapsed)
		}
	}
	c.lastUpload = report.TotalUpload
	c.lastDownload = report.TotalDownload
	c.lastSampleAt = now

	return report, nil
}
