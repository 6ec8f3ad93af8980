package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// FixedFormatWriter rewrites zerolog JSON records as fixed-width columns,
// which is easier to scan in a service log file:
//
//	2026-10-18 09:12:00.000 [INF] [lifecycle      ] Service running
//	2026-10-18 09:12:31.412 [WRN] [control        ] Control event not implemented event=Pause
type FixedFormatWriter struct {
	w io.Writer
}

// NewFixedFormatWriter creates a new FixedFormatWriter that wraps w.
func NewFixedFormatWriter(w io.Writer) *FixedFormatWriter {
	return &FixedFormatWriter{w: w}
}

var levelAbbrev = map[string]string{
	"trace": "TRC",
	"debug": "DBG",
	"info":  "INF",
	"warn":  "WRN",
	"error": "ERR",
	"fatal": "FTL",
	"panic": "PNC",
}

const (
	componentWidth = 15
	timestampWidth = len("2006-01-02 15:04:05.000")
)

// Write formats one record. Input that is not a JSON object is passed
// through unchanged.
func (f *FixedFormatWriter) Write(p []byte) (int, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(p, &fields); err != nil {
		return f.w.Write(p)
	}

	ts := formatTimestamp(popString(fields, "time"))
	lvl, ok := levelAbbrev[popString(fields, "level")]
	if !ok {
		lvl = "???"
	}
	comp := popString(fields, "component")
	if len(comp) > componentWidth {
		comp = comp[:componentWidth]
	}
	msg := popString(fields, "message")
	delete(fields, "caller")

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%-*s] %s", ts, lvl, componentWidth, comp, msg)
	if extra := formatExtra(fields); extra != "" {
		b.WriteByte(' ')
		b.WriteString(extra)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(f.w, b.String())
	// zerolog treats a short count as an error.
	return len(p), err
}

// popString removes key from fields and returns its value as a string.
func popString(fields map[string]interface{}, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	delete(fields, key)
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// formatTimestamp renders an RFC3339 timestamp as "2006-01-02 15:04:05.000"
// in the timestamp's own zone.
func formatTimestamp(ts string) string {
	if ts == "" {
		return strings.Repeat(" ", timestampWidth)
	}

	out := strings.Replace(ts, "T", " ", 1)
	if len(out) > 11 {
		if idx := strings.IndexAny(out[11:], "Z+-"); idx >= 0 {
			out = out[:11+idx]
		}
	}

	if dot := strings.LastIndex(out, "."); dot == -1 {
		out += ".000"
	} else if frac := len(out) - dot - 1; frac > 3 {
		out = out[:dot+4]
	} else {
		out += strings.Repeat("0", 3-frac)
	}

	if len(out) < timestampWidth {
		return out + strings.Repeat(" ", timestampWidth-len(out))
	}
	return out[:timestampWidth]
}

// formatExtra renders the remaining fields as sorted key=value pairs.
func formatExtra(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		s := fmt.Sprintf("%v", fields[k])
		if strings.ContainsAny(s, " \t\n\"") {
			s = fmt.Sprintf("%q", s)
		}
		parts = append(parts, k+"="+s)
	}
	return strings.Join(parts, " ")
}
