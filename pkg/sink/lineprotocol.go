package sink

import (
	"strconv"
	"strings"
)

// escape applies the InfluxDB line protocol escaping rules this
// pipeline requires: space, comma and equals sign are backslash
// escaped. It is used for the measurement, and for both tag and field
// keys/values.
//
// The original implementation escaped tag keys/values but not field
// keys in one of its two write paths; this is the one canonical
// implementation and applies escaping uniformly, per spec.
func escape(s string) string {
	r := strings.NewReplacer(" ", `\ `, ",", `\,`, "=", `\=`)
	return r.Replace(s)
}

// BuildLine renders one Point as a single line-protocol line. Tags and
// fields are emitted in Go map iteration order, so their order is not
// deterministic; BuildLine does not sort them.
func BuildLine(p Point) string {
	var b strings.Builder
	b.WriteString(escape(p.Measurement))

	for k, v := range p.Tags {
		b.WriteByte(',')
		b.WriteString(escape(k))
		b.WriteByte('=')
		b.WriteString(escape(v))
	}

	b.WriteByte(' ')

	first := true
	for k, v := range p.Fields {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(escape(k))
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}

	if p.TimestampNs != 0 {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(p.TimestampNs, 10))
	}

	return b.String()
}

// BuildLines renders a batch of points, one line-protocol line per
// point, newline-joined.
func BuildLines(points []Point) string {
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = BuildLine(p)
	}
	return strings.Join(lines, "\n")
}
