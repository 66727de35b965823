// Package sensor defines the closed set of sensor kinds and maps frame
// schemas onto them.
package sensor

import (
	"fmt"
	"strings"
)

// Family is the sensor device family.
type Family uint8

const (
	// DTEC is the temperature controller.
	DTEC Family = iota + 1
	// ATUC is the turbidity controller.
	ATUC
	// DDOC is the dissolved-oxygen controller, which reports per channel.
	DDOC
)

// Channel selects one DDOC measurement channel.
type Channel uint8

const (
	NoChannel Channel = iota
	C1
	C2
	T1
	T2
	V1
	V2
)

// Quantity is what a DDOC channel measures.
type Quantity uint8

const (
	Concentration Quantity = iota + 1
	Temperature
	Voltage
)

func (q Quantity) String() string {
	switch q {
	case Concentration:
		return "concentration"
	case Temperature:
		return "temperature"
	case Voltage:
		return "voltage"
	default:
		return "unknown"
	}
}

// Quantity returns the measured quantity of the channel.
func (c Channel) Quantity() Quantity {
	switch c {
	case C1, C2:
		return Concentration
	case T1, T2:
		return Temperature
	case V1, V2:
		return Voltage
	default:
		return 0
	}
}

// Index returns 1 or 2, or 0 for NoChannel.
func (c Channel) Index() int {
	switch c {
	case C1, T1, V1:
		return 1
	case C2, T2, V2:
		return 2
	default:
		return 0
	}
}

func (c Channel) String() string {
	switch c {
	case C1:
		return "C1"
	case C2:
		return "C2"
	case T1:
		return "T1"
	case T2:
		return "T2"
	case V1:
		return "V1"
	case V2:
		return "V2"
	default:
		return ""
	}
}

// Kind identifies a sensor stream. It is comparable and usable as a map key.
type Kind struct {
	Family  Family
	Channel Channel
}

var (
	TemperatureController = Kind{Family: DTEC}
	TurbidityController   = Kind{Family: ATUC}
)

// DissolvedOxygen returns the DDOC kind for a channel.
func DissolvedOxygen(ch Channel) Kind {
	return Kind{Family: DDOC, Channel: ch}
}

// All lists every valid kind in menu order.
func All() []Kind {
	return []Kind{
		TemperatureController,
		TurbidityController,
		DissolvedOxygen(C1),
		DissolvedOxygen(C2),
		DissolvedOxygen(T1),
		DissolvedOxygen(T2),
		DissolvedOxygen(V1),
		DissolvedOxygen(V2),
	}
}

// Valid reports whether k is one of All().
func (k Kind) Valid() bool {
	switch k.Family {
	case DTEC, ATUC:
		return k.Channel == NoChannel
	case DDOC:
		return k.Channel >= C1 && k.Channel <= V2
	default:
		return false
	}
}

// Name is the value-column name that identifies this kind in a frame.
func (k Kind) Name() string {
	switch k.Family {
	case DTEC:
		return "Temperature"
	case ATUC:
		return "Turbidity"
	case DDOC:
		if k.Channel == NoChannel {
			return "DDOC"
		}
		return "DDOC." + k.Channel.String()
	default:
		return ""
	}
}

// Label is the short display name, e.g. "DDOC C1".
func (k Kind) Label() string {
	switch k.Family {
	case DTEC:
		return "DTEC"
	case ATUC:
		return "ATUC"
	case DDOC:
		if k.Channel == NoChannel {
			return "DDOC"
		}
		return "DDOC " + k.Channel.String()
	default:
		return "unknown"
	}
}

// Description is the long display name.
func (k Kind) Description() string {
	switch k.Family {
	case DTEC:
		return "Temperature controller"
	case ATUC:
		return "Turbidity controller"
	case DDOC:
		if k.Channel == NoChannel {
			return "Dissolved oxygen controller"
		}
		return fmt.Sprintf("Dissolved oxygen controller, %s %d", k.Channel.Quantity(), k.Channel.Index())
	default:
		return "Unknown sensor"
	}
}

// Topic is the default message-bus topic for this kind's live stream.
func (k Kind) Topic() string {
	switch k.Family {
	case DTEC:
		return "blc/dtec"
	case ATUC:
		return "blc/atuc"
	case DDOC:
		return "blc/ddoc/" + strings.ToLower(k.Channel.String())
	default:
		return ""
	}
}

// Slug is a stable lower-case identifier used as a config key ("ddoc_c1").
func (k Kind) Slug() string {
	return strings.ToLower(strings.ReplaceAll(k.Label(), " ", "_"))
}

func (k Kind) String() string { return k.Label() }

// ParseKind accepts a slug, label or column name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, k := range All() {
		if norm == k.Slug() || norm == strings.ToLower(k.Label()) || norm == strings.ToLower(k.Name()) {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("unknown sensor kind %q", s)
}
