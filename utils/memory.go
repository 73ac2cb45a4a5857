package utils

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MemorySize represents a memory size in bytes
type MemorySize int64

const (
	Byte MemorySize = 1
	KB   MemorySize = 1024 * Byte
	MB   MemorySize = 1024 * KB
	GB   MemorySize = 1024 * MB
	TB   MemorySize = 1024 * GB
)

// String returns a human-readable representation of the memory size
func (m MemorySize) String() string {
	if m <= 0 {
		return "0B"
	}

	formatValue := func(val float64, unit string) string {
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f%s", val, unit)
		}
		return fmt.Sprintf("%.2f%s", val, unit)
	}

	switch {
	case m >= TB:
		return formatValue(float64(m)/float64(TB), "T")
	case m >= GB:
		return formatValue(float64(m)/float64(GB), "G")
	case m >= MB:
		return formatValue(float64(m)/float64(MB), "M")
	case m >= KB:
		return formatValue(float64(m)/float64(KB), "K")
	default:
		return fmt.Sprintf("%dB", m)
	}
}

// Bytes returns the memory size as bytes
func (m MemorySize) Bytes() int64 {
	return int64(m)
}

// MB returns the memory size as megabytes
func (m MemorySize) MB() float64 {
	return float64(m) / float64(MB)
}

// ParseMemorySize parses a memory size string like "9M", "2G", "1024K"
func ParseMemorySize(s string) (MemorySize, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, fmt.Errorf("empty memory size string")
	}

	lastChar := s[len(s)-1:]
	multiplier := Byte
	valueStr := s[:len(s)-1]

	switch strings.ToUpper(lastChar) {
	case "T":
		multiplier = TB
	case "G":
		multiplier = GB
	case "M":
		multiplier = MB
	case "K":
		multiplier = KB
	case "B":
		multiplier = Byte
	default:
		// No unit, assume bytes
		valueStr = s
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory size: %s", s)
	}

	return MemorySize(value * float64(multiplier)), nil
}

// MustParseMemorySize is like ParseMemorySize but panics on error
func MustParseMemorySize(s string) MemorySize {
	size, err := ParseMemorySize(s)
	if err != nil {
		panic(err)
	}
	return size
}

// Set implements pflag.Value so sizes can be passed as "--memory-budget 128M"
func (m *MemorySize) Set(s string) error {
	size, err := ParseMemorySize(s)
	if err != nil {
		return err
	}
	*m = size
	return nil
}

// Type implements pflag.Value
func (m *MemorySize) Type() string {
	return "size"
}

// MarshalJSON implements json.Marshaler
func (m MemorySize) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, m.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (m *MemorySize) UnmarshalJSON(data []byte) error {
	return m.Set(strings.Trim(string(data), `"`))
}

// MarshalYAML implements yaml.Marshaler
func (m MemorySize) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (m *MemorySize) UnmarshalYAML(node *yaml.Node) error {
	return m.Set(node.Value)
}
