// Package energy estimates the yield of a proposed photovoltaic system,
// preferring an external simulation tool and falling back to a closed-form
// regional model when the tool is unavailable.
package energy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Timezone  string  `json:"timezone"`
	// Region selects the insolation constant and seasonal shape used by the
	// fallback model.
	Region string `json:"region"`
}

type System struct {
	SizeKWp          float64 `json:"size_kwp"`
	TiltDeg          float64 `json:"tilt_deg"`
	AzimuthDeg       float64 `json:"azimuth_deg"`
	ModulesPerString int     `json:"modules_per_string"`
	StringsParallel  int     `json:"strings_parallel"`
	// Opaque electrical parameter blobs passed through to the simulator.
	ModuleParams   json.RawMessage `json:"module_params,omitempty"`
	InverterParams json.RawMessage `json:"inverter_params,omitempty"`
}

// Losses are fractional derates applied to the baseline performance ratio.
type Losses struct {
	Soiling      float64 `json:"soiling"`
	Shading      float64 `json:"shading"`
	Mismatch     float64 `json:"mismatch"`
	Wiring       float64 `json:"wiring"`
	Connections  float64 `json:"connections"`
	LID          float64 `json:"lid"`
	Nameplate    float64 `json:"nameplate"`
	Availability float64 `json:"availability"`
}

type Request struct {
	Location Location `json:"location"`
	System   System   `json:"system"`
	Losses   Losses   `json:"losses"`
}

type Estimate struct {
	AnnualGenerationKWh  float64     `json:"annual_generation_kwh"`
	MonthlyAvgKWh        float64     `json:"monthly_avg_kwh"`
	MonthlyGenerationKWh [12]float64 `json:"monthly_generation"`
	PerformanceRatio     float64     `json:"performance_ratio"`
	CapacityFactor       float64     `json:"capacity_factor"`
	// Source is "simulator" or "regional_model".
	Source string `json:"source"`
}

// SimulationRunner invokes the external photovoltaic simulation tool.
type SimulationRunner interface {
	Run(ctx context.Context, req Request) (Estimate, error)
}

const defaultRunTimeout = 60 * time.Second

// ToolRunner executes the simulator binary with the request as JSON on stdin
// and a structured result expected on stdout.
type ToolRunner struct {
	// Bin is the simulator executable, e.g. "pv-sim".
	Bin string
	// Timeout for one simulation run (default: 60s).
	Timeout time.Duration
}

func NewToolRunner(bin string) *ToolRunner {
	return &ToolRunner{Bin: bin, Timeout: defaultRunTimeout}
}

func (r *ToolRunner) Run(ctx context.Context, req Request) (Estimate, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = defaultRunTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return Estimate{}, err
	}

	cmd := exec.CommandContext(ctx, r.Bin)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Estimate{}, fmt.Errorf("simulator timeout after %v", timeout)
		}
		return Estimate{}, fmt.Errorf("simulator failed: %v, stderr: %s", err, stderr.String())
	}

	var est Estimate
	if err := json.Unmarshal(stdout.Bytes(), &est); err != nil {
		return Estimate{}, fmt.Errorf("simulator output unparsable: %w", err)
	}
	est.Source = "simulator"
	return est, nil
}
