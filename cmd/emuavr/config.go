package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"emuavr/usart"
)

// Config holds the simulated board and USART settings. It is read from an
// optional YAML file; flags given on the command line win.
type Config struct {
	ClockHz  uint32 `yaml:"clock_hz"`
	Baud     uint32 `yaml:"baud"`
	StopBits string `yaml:"stop_bits"`
	CharSize string `yaml:"char_size"`
	Mode     string `yaml:"mode"`
	TxDelay  int    `yaml:"tx_delay"`
	Message  string `yaml:"message"`
	LogLevel string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		ClockHz:  usart.DefaultClockHz,
		Baud:     usart.DefaultBaud,
		StopBits: "two",
		CharSize: "8",
		Mode:     "transmit",
		TxDelay:  4,
		Message:  "Hello there~, Emilia!\n",
		LogLevel: "info",
	}
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// settings is Config with the enum fields parsed.
type settings struct {
	stopBits usart.StopBits
	charSize usart.CharSize
	mode     usart.Mode
}

func (c Config) validate() (settings, error) {
	var (
		s   settings
		err error
	)
	if s.stopBits, err = usart.ParseStopBits(c.StopBits); err != nil {
		return s, err
	}
	if s.charSize, err = usart.ParseCharSize(c.CharSize); err != nil {
		return s, err
	}
	if s.mode, err = usart.ParseMode(c.Mode); err != nil {
		return s, err
	}
	if c.TxDelay < 0 {
		return s, fmt.Errorf("tx_delay must be >= 0, got %d", c.TxDelay)
	}
	return s, nil
}

// configure applies c to an unconfigured USART.
func (c Config) configure(u usart.Config) (usart.Config, error) {
	s, err := c.validate()
	if err != nil {
		return u, err
	}
	u, err = u.SetClockAndBaud(c.ClockHz, c.Baud)
	if err != nil {
		return u, err
	}
	return u.SetStopBits(s.stopBits).SetCharSize(s.charSize).SetMode(s.mode), nil
}
