// Package config loads the frame's TOML configuration.
//
// # Overview
//
// Load reads ~/.config/inkframe/config.toml (or an explicit path) with
// go-toml. A missing file is not an error: every key has a default, and
// empty values fall back to it. Paths may start with ~ and relative paths
// are resolved under root.
//
// # Keys
//
//	root             data directory, default ~/.local/share/inkframe
//	state_file       durable record, default <root>/state.json
//	log_file         device log, default <root>/inkframe.log
//	env_file         secrets, default ~/.config/inkframe/inkframe.env
//	backend          "inky" (default) or "sim"
//
//	[gallery]        dir, interval_minutes (15)
//	[apod] [xkcd]    dir, max_files (10), image_url, meta_url, interval_minutes (240)
//	[clock]          time_url, interval_minutes (10), zone or utc_offset_hours
//	[panel]          width, height, spi_port, i2c_bus, dc_pin, reset_pin, busy_pin, saturation
//	[buttons]        pins (5, A..E), leds, warn_pin, debounce_ms
//	[metrics]        textfile
//	[log]            level, journal
//	[http]           timeout_seconds
//
// # Secrets
//
// The NASA API key is read from INKFRAME_APOD_API_KEY in the process
// environment, then from the env file (godotenv syntax). Without either the
// public DEMO_KEY is used.
package config
