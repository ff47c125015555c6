package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alkime/healthvoice/internal/auth"
	"github.com/alkime/healthvoice/internal/login"
	"github.com/alkime/healthvoice/internal/recorder"
)

// Duration decodes TOML strings such as "1.5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}

	d.Duration = v

	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Flow is the timing profile of the login flow.
type Flow struct {
	InstructionsDelay Duration `toml:"instructions_delay"`
	ProcessingDelay   Duration `toml:"processing_delay"`
	SuccessRedirect   Duration `toml:"success_redirect"`
	AutoStartDelay    Duration `toml:"auto_start_delay"`
	TraditionalDelay  Duration `toml:"traditional_delay"`

	Recording FlowRecording `toml:"recording"`
}

// FlowRecording is the [recording] table.
type FlowRecording struct {
	AuthCeiling    Duration `toml:"auth_ceiling"`
	CaptureCeiling Duration `toml:"capture_ceiling"`
	EarlyStopChars int      `toml:"early_stop_chars"`
	EarlyStopAfter Duration `toml:"early_stop_after"`
}

// DefaultFlow returns the standard timings.
func DefaultFlow() Flow {
	t := auth.DefaultTimings()
	l := recorder.DefaultLimits()

	return Flow{
		InstructionsDelay: Duration{t.InstructionsDelay},
		ProcessingDelay:   Duration{t.ProcessingDelay},
		SuccessRedirect:   Duration{t.SuccessDelay},
		AutoStartDelay:    Duration{l.AutoStartDelay},
		TraditionalDelay:  Duration{login.DefaultTraditionalDelay},
		Recording: FlowRecording{
			AuthCeiling:    Duration{l.AuthCeiling},
			CaptureCeiling: Duration{l.CaptureCeiling},
			EarlyStopChars: l.EarlyStopChars,
			EarlyStopAfter: Duration{l.EarlyStopAfter},
		},
	}
}

// LoadFlow reads a TOML profile over the defaults. An empty path returns the
// defaults. Unknown keys are rejected so typos do not go unnoticed.
func LoadFlow(path string) (Flow, error) {
	flow := DefaultFlow()
	if path == "" {
		return flow, nil
	}

	meta, err := toml.DecodeFile(path, &flow)
	if err != nil {
		return Flow{}, fmt.Errorf("failed to parse flow file %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return Flow{}, fmt.Errorf("flow file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := flow.Validate(); err != nil {
		return Flow{}, fmt.Errorf("flow file %s: %w", path, err)
	}

	return flow, nil
}

// Validate rejects negative delays and non-positive ceilings.
func (f Flow) Validate() error {
	var errs []error

	for name, d := range map[string]Duration{
		"instructions_delay":         f.InstructionsDelay,
		"processing_delay":           f.ProcessingDelay,
		"success_redirect":           f.SuccessRedirect,
		"auto_start_delay":           f.AutoStartDelay,
		"traditional_delay":          f.TraditionalDelay,
		"recording.early_stop_after": f.Recording.EarlyStopAfter,
	} {
		if d.Duration < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}

	if f.Recording.AuthCeiling.Duration <= 0 || f.Recording.CaptureCeiling.Duration <= 0 {
		errs = append(errs, errors.New("recording ceilings must be positive"))
	}

	if f.Recording.EarlyStopChars < 0 {
		errs = append(errs, errors.New("recording.early_stop_chars must not be negative"))
	}

	return errors.Join(errs...)
}

// AuthTimings returns the authenticator delays.
func (f Flow) AuthTimings() auth.Timings {
	return auth.Timings{
		InstructionsDelay: f.InstructionsDelay.Duration,
		ProcessingDelay:   f.ProcessingDelay.Duration,
		SuccessDelay:      f.SuccessRedirect.Duration,
	}
}

// RecorderLimits returns the recorder policy.
func (f Flow) RecorderLimits() recorder.Limits {
	l := recorder.DefaultLimits()
	l.AuthCeiling = f.Recording.AuthCeiling.Duration
	l.CaptureCeiling = f.Recording.CaptureCeiling.Duration
	l.EarlyStopChars = f.Recording.EarlyStopChars
	l.EarlyStopAfter = f.Recording.EarlyStopAfter.Duration
	l.AutoStartDelay = f.AutoStartDelay.Duration

	return l
}

// LoginOptions returns the login shell options.
func (f Flow) LoginOptions() login.Options {
	return login.Options{TraditionalDelay: f.TraditionalDelay.Duration}
}
