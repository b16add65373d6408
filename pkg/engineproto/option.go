package engineproto

import (
	"fmt"
	"strconv"
	"strings"
)

// OptionKind is the UCI option variant. Rather than a Button/Check/Spin/
// Combo/String class hierarchy, it is a tagged sum type: the kind decides
// how the value is validated and formatted, nothing more.
type OptionKind int

const (
	OptionCheck OptionKind = iota
	OptionSpin
	OptionCombo
	OptionString
	OptionButton
)

// OptionDescriptor is what the engine reported during handshake via
// `option name <N> type <K> default <V> [min <m> max <M>] [var <V> ...]`.
type OptionDescriptor struct {
	Name    string
	Kind    OptionKind
	Default string
	Min     int
	Max     int
	Vars    []string
}

// ParseOptionLine parses one `option name ... type ... ` response line. It
// returns ok=false for lines that do not start with "option".
func ParseOptionLine(line string) (OptionDescriptor, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "option" {
		return OptionDescriptor{}, false
	}

	var d OptionDescriptor
	i := 1
	for i < len(fields) {
		switch fields[i] {
		case "name":
			j := i + 1
			for j < len(fields) && fields[j] != "type" {
				j++
			}
			d.Name = strings.Join(fields[i+1:j], " ")
			i = j
		case "type":
			if i+1 < len(fields) {
				switch fields[i+1] {
				case "check":
					d.Kind = OptionCheck
				case "spin":
					d.Kind = OptionSpin
				case "combo":
					d.Kind = OptionCombo
				case "string":
					d.Kind = OptionString
				case "button":
					d.Kind = OptionButton
				}
			}
			i += 2
		case "default":
			j := i + 1
			for j < len(fields) && fields[j] != "min" && fields[j] != "max" && fields[j] != "var" {
				j++
			}
			d.Default = strings.Join(fields[i+1:j], " ")
			i = j
		case "min":
			if i+1 < len(fields) {
				d.Min, _ = strconv.Atoi(fields[i+1])
			}
			i += 2
		case "max":
			if i+1 < len(fields) {
				d.Max, _ = strconv.Atoi(fields[i+1])
			}
			i += 2
		case "var":
			if i+1 < len(fields) {
				d.Vars = append(d.Vars, fields[i+1])
			}
			i += 2
		default:
			i++
		}
	}
	return d, d.Name != ""
}

// Validate checks value against d's kind, min/max, or enumerated vars.
func (d OptionDescriptor) Validate(value string) error {
	switch d.Kind {
	case OptionCheck:
		if value != "true" && value != "false" {
			return fmt.Errorf("engineproto: option %s: %q is not a bool", d.Name, value)
		}
	case OptionSpin:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("engineproto: option %s: %q is not an int", d.Name, value)
		}
		if d.Max > d.Min && (n < d.Min || n > d.Max) {
			return fmt.Errorf("engineproto: option %s: %d out of range [%d,%d]", d.Name, n, d.Min, d.Max)
		}
	case OptionCombo:
		if len(d.Vars) > 0 {
			ok := false
			for _, v := range d.Vars {
				if v == value {
					ok = true
					break
				}
			}
			if !ok {
				return fmt.Errorf("engineproto: option %s: %q not among %v", d.Name, value, d.Vars)
			}
		}
	}
	return nil
}
