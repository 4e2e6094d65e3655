package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/duetmon/internal/duet"
)

const dash = "—"

func orDash(v, suffix string) string {
	if strings.TrimSpace(v) == "" {
		return dash
	}
	return v + suffix
}

// formatTemp renders "actual° / target°", both rounded for display.
func formatTemp(actual, target string) string {
	if actual == "" && target == "" {
		return dash
	}
	out := duet.ValueRounded(actual) + "°"
	if target != "" {
		out += " / " + duet.ValueRounded(target) + "°"
	}
	return out
}

// formatSeconds renders a firmware seconds value as a duration.
func formatSeconds(raw string) string {
	secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || secs < 0 {
		return dash
	}
	return (time.Duration(secs) * time.Second).String()
}

func formatBytes(raw string) string {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || n < 0 {
		return dash
	}
	units := []string{"B", "KiB", "MiB", "GiB"}
	i := 0
	for n >= 1024 && i < len(units)-1 {
		n /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%.0f %s", n, units[i])
	}
	return fmt.Sprintf("%.1f %s", n, units[i])
}

// formatFilament renders a length in millimetres as metres.
func formatFilament(raw string) string {
	mm, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || mm < 0 {
		return dash
	}
	return fmt.Sprintf("%.2f m", mm/1000)
}

func formatAge(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	return d.Truncate(time.Second).String()
}
