package builtin

import (
	"context"
	"testing"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

func TestSysInfo_AllSections(t *testing.T) {
	t.Parallel()

	res := NewSysInfo().Execute(context.Background(), map[string]any{})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %s, error = %q", res.Status, res.Error)
	}
	data := res.Data.(map[string]any)
	for _, section := range []string{"host", "cpu", "memory", "disk", "process"} {
		if _, ok := data[section]; !ok {
			t.Fatalf("missing section %q in %v", section, data)
		}
	}
}

func TestSysInfo_CPUSection(t *testing.T) {
	t.Parallel()

	res := NewSysInfo().Execute(context.Background(), map[string]any{"info_type": "cpu"})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %s, error = %q", res.Status, res.Error)
	}
	data := res.Data.(map[string]any)
	if len(data) != 1 {
		t.Fatalf("data = %v, want only the cpu section", data)
	}
	section := data["cpu"].(map[string]any)
	if section["logicalCores"].(int) < 1 {
		t.Fatalf("logicalCores = %v", section["logicalCores"])
	}
	if section["physicalCores"].(int) < 1 {
		t.Fatalf("physicalCores = %v", section["physicalCores"])
	}
}

func TestSysInfo_MemorySection(t *testing.T) {
	t.Parallel()

	res := NewSysInfo().Execute(context.Background(), map[string]any{"info_type": "memory"})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %s, error = %q", res.Status, res.Error)
	}
	section := res.Data.(map[string]any)["memory"].(map[string]any)
	if section["totalGB"].(float64) <= 0 {
		t.Fatalf("totalGB = %v", section["totalGB"])
	}
	percent := section["usedPercent"].(float64)
	if percent < 0 || percent > 100 {
		t.Fatalf("usedPercent = %v", percent)
	}
}

func TestSysInfo_UnknownSection(t *testing.T) {
	t.Parallel()

	res := NewSysInfo().Execute(context.Background(), map[string]any{"info_type": "gpu"})
	if res.Status != tool.StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
}
