package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Entry is one parsed slog record.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   map[string]string
}

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Warnings returns the last n WARN or ERROR records of the log at path,
// oldest first. Only the last scanLines lines of the file are examined.
func Warnings(path string, n, scanLines int) ([]Entry, error) {
	lines, err := Read(path, scanLines)
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, line := range lines {
		e, ok := Parse(line)
		if !ok || (e.Level != "WARN" && e.Level != "ERROR") {
			continue
		}
		out = append(out, e)
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

// Parse decodes a record written by slog's JSON or text handler.
func Parse(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Entry{}, false
	}

	attrs := map[string]string{}
	if strings.HasPrefix(line, "{") {
		var raw map[string]any
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return Entry{}, false
		}
		for k, v := range raw {
			if s, ok := v.(string); ok {
				attrs[k] = s
			} else {
				attrs[k] = fmt.Sprint(v)
			}
		}
	} else if !parseText(line, attrs) {
		return Entry{}, false
	}

	level, ok := attrs["level"]
	if !ok {
		return Entry{}, false
	}
	e := Entry{Level: strings.ToUpper(level), Message: attrs["msg"]}
	if ts, ok := attrs["time"]; ok {
		e.Time, _ = time.Parse(time.RFC3339Nano, ts)
	}
	delete(attrs, "time")
	delete(attrs, "level")
	delete(attrs, "msg")
	e.Attrs = attrs
	return e, true
}

// parseText splits a key=value line; values may be Go-quoted.
func parseText(line string, attrs map[string]string) bool {
	for len(line) > 0 {
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			return false
		}
		key := line[:eq]
		line = line[eq+1:]

		var value string
		if strings.HasPrefix(line, `"`) {
			quoted, err := strconv.QuotedPrefix(line)
			if err != nil {
				return false
			}
			value, _ = strconv.Unquote(quoted)
			line = line[len(quoted):]
		} else if sp := strings.IndexByte(line, ' '); sp >= 0 {
			value, line = line[:sp], line[sp:]
		} else {
			value, line = line, ""
		}
		attrs[key] = value
		line = strings.TrimLeft(line, " ")
	}
	return true
}

// Summary renders an entry as "15:04:05 WARN message (error: ...)".
func (e Entry) Summary() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Format(time.TimeOnly))
		b.WriteByte(' ')
	}
	b.WriteString(e.Level)
	b.WriteByte(' ')
	b.WriteString(e.Message)
	if errText := e.Attrs["error"]; errText != "" {
		b.WriteString(": ")
		b.WriteString(errText)
	}
	return b.String()
}
