package commands

import (
	"fmt"
	"shift-redeemer/internal/components/telemetry"
	"shift-redeemer/internal/redeem"
	"shift-redeemer/internal/scrapers/orcz"
	"shift-redeemer/internal/scrapers/shift"
	"time"
)

type ShiftConfig struct {
	BaseUrl             string  `json:"base_url"`
	UserAgent           string  `json:"user_agent"`
	BypassCloudflare    bool    `json:"bypass_cloudflare"`
	PollIntervalSeconds float64 `json:"poll_interval_seconds"`
	BackoffSeconds      float64 `json:"backoff_seconds"`
	RequestsPerSecond   float64 `json:"requests_per_second"`
}

type OrczConfig struct {
	UserAgent        string `json:"user_agent"`
	BypassCloudflare bool   `json:"bypass_cloudflare"`
	// Pages overrides the code table url of a game, keyed by game name.
	Pages map[string]string `json:"pages"`
}

type Config struct {
	Shift     ShiftConfig      `json:"shift"`
	Orcz      OrczConfig       `json:"orcz"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func defaultConfig() Config {
	return Config{
		Shift: ShiftConfig{
			BaseUrl:             shift.DefaultBaseUrl,
			UserAgent:           shift.DefaultUserAgent,
			PollIntervalSeconds: shift.DefaultPollInterval.Seconds(),
			BackoffSeconds:      redeem.DefaultBackoff.Seconds(),
			RequestsPerSecond:   2,
		},
		Orcz: OrczConfig{
			UserAgent:        shift.DefaultUserAgent,
			BypassCloudflare: true,
		},
	}
}

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}

func (c ShiftConfig) clientOptions(output telemetry.InstrumentOutput) shift.ClientOptions {
	return shift.ClientOptions{
		BaseUrl:           c.BaseUrl,
		UserAgent:         c.UserAgent,
		BypassCloudflare:  c.BypassCloudflare,
		PollInterval:      seconds(c.PollIntervalSeconds),
		RequestsPerSecond: c.RequestsPerSecond,
		InstrumentOutput:  output,
	}
}

func (c ShiftConfig) backoff() time.Duration {
	return seconds(c.BackoffSeconds)
}

func (c OrczConfig) clientOptions(output telemetry.InstrumentOutput) (orcz.ClientOptions, error) {
	pages := map[orcz.Game]string{}
	for name, page := range c.Pages {
		game, err := orcz.GameFromName(name)
		if err != nil {
			return orcz.ClientOptions{}, fmt.Errorf("orcz.pages: %w", err)
		}
		pages[game] = page
	}
	return orcz.ClientOptions{
		Pages:            pages,
		UserAgent:        c.UserAgent,
		BypassCloudflare: c.BypassCloudflare,
		InstrumentOutput: output,
	}, nil
}
