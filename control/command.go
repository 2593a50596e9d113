package control

import (
	"strconv"
	"strings"

	"github.com/dudk/mpxgen"
)

// command binds a keyword to the mutation it applies. Argument starts
// right after the keyword and a single space.
type command struct {
	keyword string
	apply   func(s mpxgen.Setter, arg string)
}

// commands is the dispatch table of control protocol.
var commands = []command{
	{"PI", setPI},
	{"PS", func(s mpxgen.Setter, arg string) { s.SetPS(truncate(arg, mpxgen.MaxPS)) }},
	{"RT", func(s mpxgen.Setter, arg string) { s.SetRT(truncate(arg, mpxgen.MaxRT)) }},
	{"TA", func(s mpxgen.Setter, arg string) { s.SetTA(isOn(arg)) }},
	{"TP", func(s mpxgen.Setter, arg string) { s.SetTP(isOn(arg)) }},
	{"MS", func(s mpxgen.Setter, arg string) { s.SetMS(isOn(arg)) }},
	{"AB", func(s mpxgen.Setter, arg string) { s.SetAB(strings.HasPrefix(arg, "A")) }},
	{"DI", setDI},
	{"PTY", setPTY},
	{"RTP", setRTPlusTags},
	{"MPX", setGains},
	{"VOL", setVolume},
	{"PPM", setPPM},
	{"RTPF", setRTPlusFlags},
	{"PTYN", setPTYN},
}

// Execute interprets a single control line and applies it to s. It returns
// true if the line starts with a known keyword, even when the argument was
// malformed and nothing was changed. Malformed arguments are silently
// ignored, there is no error reporting in the protocol.
func Execute(s mpxgen.Setter, line string) bool {
	for _, c := range commands {
		n := len(c.keyword)
		if len(line) <= n+1 || line[n] != ' ' || line[:n] != c.keyword {
			continue
		}
		c.apply(s, trimTerminator(line[n+1:]))
		return true
	}
	return false
}

func setPI(s mpxgen.Setter, arg string) {
	if pi, ok := leadingUint(truncate(arg, 4), 16); ok {
		s.SetPI(uint16(pi))
	}
}

func setDI(s mpxgen.Setter, arg string) {
	if di, ok := leadingUint(arg, 10); ok && di <= mpxgen.MaxDI {
		s.SetDI(uint8(di))
	}
}

func setPTY(s mpxgen.Setter, arg string) {
	if pty, ok := leadingUint(arg, 10); ok && pty <= mpxgen.MaxPTY {
		s.SetPTY(uint8(pty))
	}
}

func setRTPlusTags(s mpxgen.Setter, arg string) {
	v, ok := scanUints(arg, 6)
	if !ok {
		return
	}
	for _, n := range v {
		if n > mpxgen.MaxRTPlusTag {
			return
		}
	}
	s.SetRTPlusTags(
		mpxgen.RTPlusTag{Type: uint8(v[0]), Start: uint8(v[1]), Length: uint8(v[2])},
		mpxgen.RTPlusTag{Type: uint8(v[3]), Start: uint8(v[4]), Length: uint8(v[5])},
	)
}

func setGains(s mpxgen.Setter, arg string) {
	v, ok := scanUints(arg, mpxgen.NumCarriers)
	if !ok {
		return
	}
	for i, g := range v {
		s.SetCarrierGain(i, uint(g))
	}
}

func setVolume(s mpxgen.Setter, arg string) {
	if vol, ok := leadingUint(arg, 10); ok {
		s.SetVolume(uint(vol))
	}
}

func setPPM(s mpxgen.Setter, arg string) {
	if ppm, ok := leadingFloat(arg); ok {
		s.SetPPM(ppm)
	}
}

func setRTPlusFlags(s mpxgen.Setter, arg string) {
	v, ok := scanUints(arg, 2)
	if !ok {
		return
	}
	// anything but 1 turns the flag off.
	s.SetRTPlusFlags(v[0] == 1, v[1] == 1)
}

func setPTYN(s mpxgen.Setter, arg string) {
	arg = truncate(arg, mpxgen.MaxPTYN)
	if strings.HasPrefix(arg, "OFF") {
		s.SetPTYN("")
		return
	}
	s.SetPTYN(arg)
}

func isOn(arg string) bool {
	return strings.HasPrefix(arg, "ON")
}

func trimTerminator(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// leadingUint parses the longest run of digits at the start of s, after
// optional spaces. Hexadecimal digits may be prefixed with 0x. Values that
// overflow 32 bits are rejected.
func leadingUint(s string, base int) (uint64, bool) {
	s = strings.TrimLeft(s, " \t")
	if base == 16 && len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') && isDigit(s[2], 16) {
		s = s[2:]
	}
	i := 0
	for i < len(s) && isDigit(s[i], base) {
		i++
	}
	if i == 0 {
		return 0, false
	}
	v, err := strconv.ParseUint(s[:i], base, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}

// leadingFloat parses the longest decimal floating point prefix of s.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i], 10) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i], 10) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	// exponent is only taken when it's complete.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k], 10) {
			k++
		}
		if k > j {
			i = k
		}
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// scanUints reads n comma separated unsigned decimals from the start of s.
// Text after the last value is ignored.
func scanUints(s string, n int) ([]uint64, bool) {
	v := make([]uint64, 0, n)
	for len(v) < n {
		s = strings.TrimLeft(s, " \t")
		i := 0
		for i < len(s) && isDigit(s[i], 10) {
			i++
		}
		if i == 0 {
			return nil, false
		}
		u, err := strconv.ParseUint(s[:i], 10, 32)
		if err != nil {
			return nil, false
		}
		v = append(v, u)
		s = s[i:]
		if len(v) == n {
			break
		}
		if !strings.HasPrefix(s, ",") {
			return nil, false
		}
		s = s[1:]
	}
	return v, true
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
		return true
	}
	return false
}
