package convolution

import (
	"fmt"
	"strings"
)

// Border selects how samples outside the raster are produced.
type Border int

const (
	// BorderReflect101 mirrors around the edge sample without repeating
	// it: dcb|abcd|cba.
	BorderReflect101 Border = iota
	// BorderReplicate repeats the edge sample: aaa|abcd|ddd.
	BorderReplicate
	// BorderSkip computes only pixels with a full in-bounds neighbourhood
	// and leaves the border at zero.
	BorderSkip
)

func (b Border) String() string {
	switch b {
	case BorderReflect101:
		return "reflect101"
	case BorderReplicate:
		return "replicate"
	case BorderSkip:
		return "skip"
	default:
		return fmt.Sprintf("Border(%d)", int(b))
	}
}

func ParseBorder(s string) (Border, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reflect", "reflect101", "mirror":
		return BorderReflect101, nil
	case "replicate", "clamp":
		return BorderReplicate, nil
	case "skip", "zero":
		return BorderSkip, nil
	default:
		return 0, fmt.Errorf("unknown border policy: %q", s)
	}
}

// MarshalText lets Border appear in YAML/TOML configuration.
func (b Border) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Border) UnmarshalText(text []byte) error {
	v, err := ParseBorder(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// resolve maps a possibly out-of-range index into [0, n). It is only called
// with i within one kernel half-width of the range, which never exceeds n-1.
func (b Border) resolve(i, n int) int {
	if i >= 0 && i < n {
		return i
	}
	if b == BorderReplicate || n == 1 {
		if i < 0 {
			return 0
		}
		return n - 1
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*(n-1) - i
		}
	}
	return i
}
