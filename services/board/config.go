package board

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rmrobinson/kiosk/lib/relay"
	"github.com/rmrobinson/kiosk/lib/schedule"
	"github.com/rmrobinson/kiosk/services/transit"
	"github.com/spf13/viper"
)

const envPrefix = "KIOSK"

// DirectionConfig associates destination keywords with a direction label.
type DirectionConfig struct {
	Label    string   `mapstructure:"label" yaml:"label" validate:"required"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords" validate:"min=1"`
}

// LineConfig describes a line that may appear on the board.
// Lines are a list rather than a map since configuration keys are case-insensitive.
type LineConfig struct {
	ID           string            `mapstructure:"id" yaml:"id" validate:"required"`
	Code         string            `mapstructure:"code" yaml:"code" validate:"required"`
	Mode         string            `mapstructure:"mode" yaml:"mode" validate:"omitempty,oneof=rail tram bus"`
	Headway      time.Duration     `mapstructure:"headway" yaml:"headway" validate:"gte=0"`
	Destinations []string          `mapstructure:"destinations" yaml:"destinations"`
	Directions   []DirectionConfig `mapstructure:"directions" yaml:"directions" validate:"dive"`
}

// ColumnLineConfig is a line and direction shown in a column.
type ColumnLineConfig struct {
	Line      string `mapstructure:"line" yaml:"line" validate:"required"`
	Direction string `mapstructure:"direction" yaml:"direction"`
}

// ColumnConfig is a board column bound to a monitored stop.
type ColumnConfig struct {
	ID    string             `mapstructure:"id" yaml:"id" validate:"required"`
	Stop  string             `mapstructure:"stop" yaml:"stop" validate:"required"`
	Lines []ColumnLineConfig `mapstructure:"lines" yaml:"lines" validate:"min=1,dive"`
}

// TrafficLineConfig is a line whose disruption messages are displayed.
type TrafficLineConfig struct {
	Label string `mapstructure:"label" yaml:"label" validate:"required"`
	Code  string `mapstructure:"code" yaml:"code" validate:"required"`
}

// RelayConfig controls the outbound fetch client.
type RelayConfig struct {
	Prefix    string        `mapstructure:"prefix" yaml:"prefix" validate:"omitempty,url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	Retries   int           `mapstructure:"retries" yaml:"retries" validate:"gte=0,lte=10"`
	BaseDelay time.Duration `mapstructure:"base_delay" yaml:"base_delay" validate:"gte=0"`
	APIKey    string        `mapstructure:"api_key" yaml:"-"`
}

// TransitRefreshConfig is the adaptive cadence of the transit board.
type TransitRefreshConfig struct {
	Peak        time.Duration `mapstructure:"peak" yaml:"peak" validate:"gt=0"`
	OffPeak     time.Duration `mapstructure:"off_peak" yaml:"off_peak" validate:"gt=0"`
	Night       time.Duration `mapstructure:"night" yaml:"night" validate:"gte=0"`
	PeakWindows []string      `mapstructure:"peak_windows" yaml:"peak_windows"`
	NightWindow string        `mapstructure:"night_window" yaml:"night_window"`
}

// RefreshConfig holds the cadence of every panel.
type RefreshConfig struct {
	Transit   TransitRefreshConfig `mapstructure:"transit" yaml:"transit"`
	Traffic   time.Duration        `mapstructure:"traffic" yaml:"traffic" validate:"gt=0"`
	Weather   time.Duration        `mapstructure:"weather" yaml:"weather" validate:"gt=0"`
	News      time.Duration        `mapstructure:"news" yaml:"news" validate:"gt=0"`
	Bikeshare time.Duration        `mapstructure:"bikeshare" yaml:"bikeshare" validate:"gt=0"`
	Racing    time.Duration        `mapstructure:"racing" yaml:"racing" validate:"gt=0"`
}

// SyntheticConfig tunes fabricated departures.
type SyntheticConfig struct {
	DefaultHeadway time.Duration `mapstructure:"default_headway" yaml:"default_headway" validate:"gte=0"`
	Count          int           `mapstructure:"count" yaml:"count" validate:"gte=1,lte=10"`
	Horizon        time.Duration `mapstructure:"horizon" yaml:"horizon" validate:"gt=0"`
	JitterFraction float64       `mapstructure:"jitter_fraction" yaml:"jitter_fraction" validate:"gte=0,lt=1"`
}

// WeatherConfig locates the weather panel.
type WeatherConfig struct {
	URL       string  `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
	Latitude  float64 `mapstructure:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `mapstructure:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
}

// NewsConfig locates the headline feed.
type NewsConfig struct {
	URL    string `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
	Source string `mapstructure:"source" yaml:"source"`
	Limit  int    `mapstructure:"limit" yaml:"limit" validate:"gte=1"`
}

// BikeshareConfig lists the tracked bike-share stations.
type BikeshareConfig struct {
	URL      string   `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
	Stations []string `mapstructure:"stations" yaml:"stations"`
}

// RacingConfig lists the tracked hippodromes.
type RacingConfig struct {
	URL         string   `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
	Hippodromes []string `mapstructure:"hippodromes" yaml:"hippodromes"`
}

// Config is the full kiosk configuration.
type Config struct {
	Listen          string              `mapstructure:"listen" yaml:"listen" validate:"required"`
	Location        string              `mapstructure:"location" yaml:"location" validate:"required"`
	MaxTrips        int                 `mapstructure:"max_trips" yaml:"max_trips" validate:"gte=1"`
	LineCodePattern string              `mapstructure:"line_code_pattern" yaml:"line_code_pattern"`
	CancelKeywords  []string            `mapstructure:"cancel_keywords" yaml:"cancel_keywords"`
	Timetable       bool                `mapstructure:"timetable" yaml:"timetable"`
	Relay           RelayConfig         `mapstructure:"relay" yaml:"relay"`
	Endpoints       transit.Endpoints   `mapstructure:"endpoints" yaml:"endpoints"`
	Refresh         RefreshConfig       `mapstructure:"refresh" yaml:"refresh"`
	Synthetic       SyntheticConfig     `mapstructure:"synthetic" yaml:"synthetic"`
	Lines           []LineConfig        `mapstructure:"lines" yaml:"lines" validate:"dive"`
	Columns         []ColumnConfig      `mapstructure:"columns" yaml:"columns" validate:"dive"`
	Traffic         []TrafficLineConfig `mapstructure:"traffic" yaml:"traffic" validate:"dive"`
	Weather         WeatherConfig       `mapstructure:"weather" yaml:"weather"`
	News            NewsConfig          `mapstructure:"news" yaml:"news"`
	Bikeshare       BikeshareConfig     `mapstructure:"bikeshare" yaml:"bikeshare"`
	Racing          RacingConfig        `mapstructure:"racing" yaml:"racing"`
}

var (
	// ErrUnknownLine is returned when a column references a line that is not configured.
	ErrUnknownLine = errors.New("column references an unknown line")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":10110")
	v.SetDefault("location", "Europe/Paris")
	v.SetDefault("max_trips", 3)
	v.SetDefault("line_code_pattern", transit.DefaultLineCodePattern.String())
	v.SetDefault("cancel_keywords", transit.DefaultCancelKeywords)
	v.SetDefault("timetable", true)

	v.SetDefault("relay.prefix", "https://ratp-proxy.hippodrome-proxy42.workers.dev/?url=")
	v.SetDefault("relay.timeout", "15s")
	v.SetDefault("relay.retries", 2)
	v.SetDefault("relay.base_delay", "1s")

	v.SetDefault("endpoints.stop_monitoring", transit.DefaultEndpoints.StopMonitoring)
	v.SetDefault("endpoints.general_message", transit.DefaultEndpoints.GeneralMessage)
	v.SetDefault("endpoints.navitia", transit.DefaultEndpoints.Navitia)
	v.SetDefault("endpoints.line_catalog", transit.DefaultEndpoints.LineCatalog)

	v.SetDefault("refresh.transit.peak", "30s")
	v.SetDefault("refresh.transit.off_peak", "60s")
	v.SetDefault("refresh.transit.night", "5m")
	v.SetDefault("refresh.transit.peak_windows", []string{"07:00-09:30", "16:30-19:30"})
	v.SetDefault("refresh.transit.night_window", "01:30-05:00")
	v.SetDefault("refresh.traffic", "5m")
	v.SetDefault("refresh.weather", "10m")
	v.SetDefault("refresh.news", "15m")
	v.SetDefault("refresh.bikeshare", "2m")
	v.SetDefault("refresh.racing", "30m")

	v.SetDefault("synthetic.default_headway", "10m")
	v.SetDefault("synthetic.count", 3)
	v.SetDefault("synthetic.horizon", "120m")
	v.SetDefault("synthetic.jitter_fraction", 0.25)

	v.SetDefault("weather.url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather.latitude", 48.83)
	v.SetDefault("weather.longitude", 2.42)
	v.SetDefault("news.url", "https://www.lemonde.fr/rss/une.xml")
	v.SetDefault("news.source", "lemonde")
	v.SetDefault("news.limit", 8)
	v.SetDefault("bikeshare.url", "https://opendata.paris.fr/api/explore/v2.1/catalog/datasets/velib-disponibilite-en-temps-reel/records")
	v.SetDefault("bikeshare.stations", []string{"12104", "12115"})
	v.SetDefault("racing.url", "https://offline.turfinfo.api.pmu.fr/rest/client/7/programme")
	v.SetDefault("racing.hippodromes", []string{"VIN", "ENG"})
}

// LoadConfig reads the configuration from path, or from kiosk.yml in the working directory
// or /etc/kiosk when path is empty. A missing file is not an error; every setting has a
// default and can be overridden through KIOSK_ prefixed environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows about.
	v.BindEnv("relay.api_key")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("kiosk")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/kiosk")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := regexp.Compile(c.LineCodePattern); err != nil {
		return fmt.Errorf("invalid config: line_code_pattern: %w", err)
	}
	if _, err := c.AdaptiveInterval(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	registry, err := c.Registry()
	if err != nil {
		return err
	}
	return registry.Validate()
}

// RelayClientConfig converts the relay settings into a fetch client configuration.
func (c *Config) RelayClientConfig() relay.Config {
	rc := relay.Config{
		Relay:     c.Relay.Prefix,
		Timeout:   c.Relay.Timeout,
		Retries:   c.Relay.Retries,
		BaseDelay: c.Relay.BaseDelay,
	}
	if c.Relay.APIKey != "" {
		rc.Headers = map[string]string{"apikey": c.Relay.APIKey}
	}
	return rc
}

// AdaptiveInterval builds the refresh schedule of the transit board.
func (c *Config) AdaptiveInterval() (schedule.AdaptiveInterval, error) {
	ai := schedule.AdaptiveInterval{
		Peak:    c.Refresh.Transit.Peak,
		OffPeak: c.Refresh.Transit.OffPeak,
		Night:   c.Refresh.Transit.Night,
	}
	for _, w := range c.Refresh.Transit.PeakWindows {
		window, err := schedule.ParseWindow(w)
		if err != nil {
			return ai, err
		}
		ai.PeakWindows = append(ai.PeakWindows, window)
	}
	if c.Refresh.Transit.NightWindow != "" {
		window, err := schedule.ParseWindow(c.Refresh.Transit.NightWindow)
		if err != nil {
			return ai, err
		}
		ai.NightWindow = &window
	}
	return ai, nil
}

// Registry builds the expected-lines registry. Without configured lines and columns the
// built-in board is used.
func (c *Config) Registry() (*transit.Registry, error) {
	if len(c.Lines) == 0 && len(c.Columns) == 0 {
		return transit.DefaultRegistry(), nil
	}

	r := &transit.Registry{
		Codes:      transit.LineCodeMap{},
		Directions: transit.DirectionKeywords{},
	}
	modes := map[transit.LineID]transit.Mode{}
	for _, line := range c.Lines {
		id := transit.LineID(line.ID)
		r.Codes[id] = line.Code
		modes[id] = transit.Mode(line.Mode)
		if modes[id] == "" {
			modes[id] = transit.ModeBus
		}
		for _, dir := range line.Directions {
			if r.Directions[id] == nil {
				r.Directions[id] = map[string][]string{}
			}
			r.Directions[id][dir.Label] = dir.Keywords
		}
	}

	for _, col := range c.Columns {
		column := transit.Column{
			ID:   col.ID,
			Stop: transit.StopID(col.Stop),
		}
		for _, cl := range col.Lines {
			id := transit.LineID(cl.Line)
			mode, ok := modes[id]
			if !ok {
				return nil, fmt.Errorf("%w: %s in column %s", ErrUnknownLine, cl.Line, col.ID)
			}
			column.Lines = append(column.Lines, transit.ExpectedLine{
				LineID:    id,
				Mode:      mode,
				Direction: cl.Direction,
			})
		}
		r.Columns = append(r.Columns, column)
	}
	return r, nil
}

// SyntheticFallbackConfig builds the fabricated departure settings.
func (c *Config) SyntheticFallbackConfig(loc *time.Location) transit.SyntheticConfig {
	sc := transit.SyntheticConfig{
		Headways:       transit.DefaultHeadways(),
		Destinations:   transit.DefaultDestinations(),
		DefaultHeadway: c.Synthetic.DefaultHeadway,
		Count:          c.Synthetic.Count,
		Horizon:        c.Synthetic.Horizon,
		JitterFraction: c.Synthetic.JitterFraction,
		Location:       loc,
	}
	if len(c.Lines) > 0 {
		sc.Headways = map[transit.LineID]time.Duration{}
		sc.Destinations = map[transit.LineID][]string{}
		for _, line := range c.Lines {
			if line.Headway > 0 {
				sc.Headways[transit.LineID(line.ID)] = line.Headway
			}
			if len(line.Destinations) > 0 {
				sc.Destinations[transit.LineID(line.ID)] = line.Destinations
			}
		}
	}
	return sc
}

// MonitoredLines returns the lines whose disruption messages are collected.
func (c *Config) MonitoredLines() []transit.MonitoredLine {
	if len(c.Traffic) == 0 {
		return transit.DefaultMonitoredLines()
	}
	var lines []transit.MonitoredLine
	for _, tl := range c.Traffic {
		lines = append(lines, transit.MonitoredLine{Label: tl.Label, Code: tl.Code})
	}
	return lines
}
