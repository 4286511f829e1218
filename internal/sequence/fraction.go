package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fraction is an exact time value measured in whole bars. It is kept
// normalized (Den > 0, gcd(|Num|, Den) == 1), so equal times compare equal
// with == and accumulating thirds or sevenths of a bar never drifts.
type Fraction struct {
	Num int64
	Den int64
}

// Frac returns the normalized fraction num/den. den must be non-zero.
func Frac(num, den int64) Fraction {
	if den < 0 {
		num, den = -num, -den
	}
	if g := gcd(abs64(num), den); g > 1 {
		num /= g
		den /= g
	}
	return Fraction{Num: num, Den: den}
}

func (f Fraction) Add(g Fraction) Fraction {
	return Frac(f.Num*g.Den+g.Num*f.Den, f.Den*g.Den)
}

func (f Fraction) Mul(g Fraction) Fraction {
	return Frac(f.Num*g.Num, f.Den*g.Den)
}

func (f Fraction) Less(g Fraction) bool {
	return f.Num*g.Den < g.Num*f.Den
}

func (f Fraction) IsZero() bool { return f.Num == 0 }

// Float converts to float64. Only the export stages use this; the core
// pipeline stays exact.
func (f Fraction) Float() float64 {
	return float64(f.Num) / float64(f.Den)
}

func (f Fraction) String() string {
	if f.Den == 1 {
		return strconv.FormatInt(f.Num, 10)
	}
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

func (f Fraction) MarshalYAML() (any, error) {
	return f.String(), nil
}

func (f *Fraction) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	num, den := raw, "1"
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		num, den = raw[:i], raw[i+1:]
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid fraction %q", raw)
	}
	d, err := strconv.ParseInt(den, 10, 64)
	if err != nil || d == 0 {
		return fmt.Errorf("invalid fraction %q", raw)
	}
	*f = Frac(n, d)
	return nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
