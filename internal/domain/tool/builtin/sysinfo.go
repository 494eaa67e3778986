package builtin

import (
	"context"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

// SysInfo reports host, cpu, memory and disk metrics via gopsutil, plus
// facts about the serving process itself. It never shells out.
type SysInfo struct {
	started time.Time
}

func NewSysInfo() *SysInfo { return &SysInfo{started: time.Now().UTC()} }

func (s *SysInfo) Schema() tool.Schema {
	return tool.Schema{
		Name:        "system_info",
		Description: "Get system information: host, cpu, memory, disk, process",
		Params: map[string]tool.Param{
			"info_type": {
				Type:        tool.TypeString,
				Description: "Section to return",
				Enum:        []string{"all", "host", "cpu", "memory", "disk", "process"},
			},
		},
	}
}

func (s *SysInfo) Timeout() time.Duration { return 5 * time.Second }

type sysInfoRequest struct {
	InfoType string `json:"info_type"`
}

func (s *SysInfo) Execute(ctx context.Context, params map[string]any) tool.Result {
	var req sysInfoRequest
	if err := decodeParams(params, &req); err != nil {
		return tool.Errorf("invalid system_info params: %v", err)
	}
	if req.InfoType == "" {
		req.InfoType = "all"
	}

	sections := map[string]func(context.Context) (map[string]any, error){
		"host":    s.hostSection,
		"cpu":     s.cpuSection,
		"memory":  s.memorySection,
		"disk":    s.diskSection,
		"process": s.processSection,
	}

	if req.InfoType == "all" {
		out := make(map[string]any, len(sections))
		for name, build := range sections {
			section, err := build(ctx)
			if err != nil {
				section = map[string]any{"error": err.Error()}
			}
			out[name] = section
		}
		return tool.Success(out)
	}

	build, ok := sections[req.InfoType]
	if !ok {
		return tool.Errorf("unknown info_type %q", req.InfoType)
	}
	section, err := build(ctx)
	if err != nil {
		return tool.Errorf("cannot read %s info: %v", req.InfoType, err)
	}
	return tool.Success(map[string]any{req.InfoType: section})
}

func (s *SysInfo) hostSection(ctx context.Context) (map[string]any, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"hostname":      info.Hostname,
		"os":            info.OS,
		"platform":      info.Platform,
		"kernelVersion": info.KernelVersion,
		"arch":          info.KernelArch,
		"uptimeSeconds": info.Uptime,
	}, nil
}

func (s *SysInfo) cpuSection(ctx context.Context) (map[string]any, error) {
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	section := map[string]any{
		"physicalCores": physical,
		"logicalCores":  logical,
		"goroutines":    runtime.NumGoroutine(),
	}
	// Interval 0 measures since the previous call and never blocks.
	if percent, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percent) > 0 {
		section["usagePercent"] = round2(percent[0])
	}
	return section, nil
}

func (s *SysInfo) memorySection(ctx context.Context) (map[string]any, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"totalGB":     toGB(vm.Total),
		"availableGB": toGB(vm.Available),
		"usedGB":      toGB(vm.Used),
		"usedPercent": round2(vm.UsedPercent),
	}, nil
}

func (s *SysInfo) diskSection(ctx context.Context) (map[string]any, error) {
	usage, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"path":        usage.Path,
		"totalGB":     toGB(usage.Total),
		"usedGB":      toGB(usage.Used),
		"freeGB":      toGB(usage.Free),
		"usedPercent": round2(usage.UsedPercent),
	}, nil
}

func (s *SysInfo) processSection(_ context.Context) (map[string]any, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return map[string]any{
		"pid":           os.Getpid(),
		"workingDir":    wd,
		"goVersion":     runtime.Version(),
		"uptimeSeconds": int64(time.Since(s.started).Seconds()),
	}, nil
}

func toGB(b uint64) float64 {
	return round2(float64(b) / (1 << 30))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
