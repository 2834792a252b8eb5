package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"github.com/painelbot/atendente/pkg/domain"
)

// PrintBanner writes the atendente ASCII banner to w, coloured when w is a colour terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	// WhatsApp greens, light to dark
	lines := []struct{ text, color string }{
		{"        _                 _            _       ", "#9be7b0"},
		{"   __ _| |_ ___ _ __   __| | ___ _ __ | |_ ___ ", "#6fdc8c"},
		{"  / _` | __/ _ \\ '_ \\ / _` |/ _ \\ '_ \\| __/ _ \\", "#42d36e"},
		{" | (_| | ||  __/ | | | (_| |  __/ | | | ||  __/", "#25d366"},
		{"  \\__,_|\\__\\___|_| |_|\\__,_|\\___|_| |_|\\__\\___|", "#128c7e"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// StatusLabel colours an instance connection status for w.
func StatusLabel(w io.Writer, status string) string {
	out := termenv.NewOutput(w)
	status = domain.NormalizeStatus(status)
	color := "#f59e0b"
	switch status {
	case domain.StatusConnected:
		color = "#25d366"
	case domain.StatusDisconnected:
		color = "#ef4444"
	}
	return out.String(status).Foreground(out.Color(color)).String()
}
