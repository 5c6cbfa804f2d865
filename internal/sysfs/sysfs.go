package sysfs

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/markusressel/motor2go/internal/util"
	"golang.org/x/exp/slices"
)

const (
	DefaultGpioRoot = "/sys/class/gpio"
	DefaultPwmRoot  = "/sys/class/pwm"
)

var (
	gpioRegex    = regexp.MustCompile(`^gpio(\d+)$`)
	pwmChipRegex = regexp.MustCompile(`^pwmchip(\d+)$`)
	pwmRegex     = regexp.MustCompile(`^pwm(\d+)$`)
)

// GpioLine is an exported GPIO line, usable as an encoder input
type GpioLine struct {
	Name      string
	Index     int
	ValuePath string
	Direction string
	// -1 if the value could not be read
	Value int
}

// PwmChannel is an exported channel of a PWM chip, usable as actuator
type PwmChannel struct {
	Chip          string
	ChipIndex     int
	Index         int
	DutyCyclePath string
	// nanoseconds, -1 if unknown
	Period    int
	DutyCycle int
	Enabled   bool
}

// Resolution returns the number of bits needed to represent the period of this channel
func (c *PwmChannel) Resolution() int {
	bits := 0
	for period := c.Period; period > 0; period >>= 1 {
		bits++
	}
	return bits
}

// GetGpioLines returns all exported GPIO lines below the given root, ordered by index
func GetGpioLines(root string) ([]*GpioLine, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var result []*GpioLine
	for _, entry := range entries {
		match := gpioRegex.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		index, _ := strconv.Atoi(match[1])
		dir := filepath.Join(root, entry.Name())

		value, err := util.ReadIntFromFile(filepath.Join(dir, "value"))
		if err != nil {
			value = -1
		}

		result = append(result, &GpioLine{
			Name:      entry.Name(),
			Index:     index,
			ValuePath: filepath.Join(dir, "value"),
			Direction: readString(filepath.Join(dir, "direction")),
			Value:     value,
		})
	}

	slices.SortFunc(result, func(a, b *GpioLine) int {
		return a.Index - b.Index
	})
	return result, nil
}

// GetPwmChannels returns all exported PWM channels below the given root, ordered by chip and index
func GetPwmChannels(root string) ([]*PwmChannel, error) {
	chips, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var result []*PwmChannel
	for _, chip := range chips {
		chipMatch := pwmChipRegex.FindStringSubmatch(chip.Name())
		if chipMatch == nil {
			continue
		}
		chipIndex, _ := strconv.Atoi(chipMatch[1])
		chipDir := filepath.Join(root, chip.Name())

		channels, err := os.ReadDir(chipDir)
		if err != nil {
			continue
		}
		for _, channel := range channels {
			match := pwmRegex.FindStringSubmatch(channel.Name())
			if match == nil {
				continue
			}
			index, _ := strconv.Atoi(match[1])
			dir := filepath.Join(chipDir, channel.Name())

			period, err := util.ReadIntFromFile(filepath.Join(dir, "period"))
			if err != nil {
				period = -1
			}
			dutyCycle, err := util.ReadIntFromFile(filepath.Join(dir, "duty_cycle"))
			if err != nil {
				dutyCycle = -1
			}
			enabled, _ := util.ReadIntFromFile(filepath.Join(dir, "enable"))

			result = append(result, &PwmChannel{
				Chip:          chip.Name(),
				ChipIndex:     chipIndex,
				Index:         index,
				DutyCyclePath: filepath.Join(dir, "duty_cycle"),
				Period:        period,
				DutyCycle:     dutyCycle,
				Enabled:       enabled == 1,
			})
		}
	}

	slices.SortFunc(result, func(a, b *PwmChannel) int {
		if a.ChipIndex != b.ChipIndex {
			return a.ChipIndex - b.ChipIndex
		}
		return a.Index - b.Index
	})
	return result, nil
}

func readString(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}
