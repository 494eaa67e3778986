// Package builtin provides the tool contracts shipped with the engine:
// arithmetic evaluation, clock/timezone lookup, host inspection, JSON/CSV
// data manipulation, root-jailed file access and bounded HTTP fetch. Each
// tool decodes its parameter map
// into a typed request struct before doing any work.
package builtin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

// Category names used when registering the builtin set.
const (
	CategoryMath   = "math"
	CategoryTime   = "time"
	CategorySystem = "system"
	CategoryFile   = "file"
	CategoryWeb    = "web"
	CategoryData   = "data"
)

// Config carries the knobs builtin tools need at construction time.
type Config struct {
	// FileRoot jails read_file/write_file/list_dir. Empty disables the
	// file tools entirely.
	FileRoot string

	// HTTPClient is used by http_fetch; nil gets a 10s-timeout default.
	HTTPClient *http.Client
}

// RegisterAll wires the builtin set into the registry. Tools whose
// prerequisites are missing (e.g. no file root) are skipped, not stubbed.
func RegisterAll(reg *tool.Registry, cfg Config) {
	reg.Register(NewCalculator(), CategoryMath)
	reg.Register(NewClock(), CategoryTime)
	reg.Register(NewSysInfo(), CategorySystem)
	reg.Register(NewJSONParse(), CategoryData)
	reg.Register(NewJSONQuery(), CategoryData)
	reg.Register(NewDataTransform(), CategoryData)

	if cfg.FileRoot != "" {
		reg.Register(NewReadFile(cfg.FileRoot), CategoryFile)
		reg.Register(NewWriteFile(cfg.FileRoot), CategoryFile)
		reg.Register(NewListDir(cfg.FileRoot), CategoryFile)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	reg.Register(NewHTTPFetch(client), CategoryWeb)
}

// decodeParams maps the loosely-typed parameter map onto a typed request
// struct, honoring json tags. The registry has already type-checked declared
// parameters, so failures here mean an undeclared shape slipped through.
func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "json",
	})
	if err != nil {
		return fmt.Errorf("build params decoder: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}
