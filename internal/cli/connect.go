package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/poller"
)

// ConnectionSource is the client side of the QR flow.
type ConnectionSource interface {
	ConnectionState(ctx context.Context, name string) (domain.ConnectState, error)
}

// ConnectOptions configures WatchConnection.
type ConnectOptions struct {
	Interval time.Duration
	// QRPath, when set, receives the latest QR code image (PNG).
	QRPath string
}

// WatchConnection polls the connection state of instance name, printing every new QR or pairing code,
// until the instance connects or ctx ends.
func WatchConnection(ctx context.Context, src ConnectionSource, name string, w io.Writer, opts ConnectOptions) error {
	var lastCode string
	onState := func(s domain.ConnectState) {
		if s.Terminal() || s.Code == lastCode {
			return
		}
		lastCode = s.Code
		if s.Pairing != "" {
			PrintSystemMessage(w, "Pairing code: %s", s.Pairing)
		}
		if opts.QRPath != "" && s.Base64 != "" {
			if err := writeQR(opts.QRPath, s.Base64); err != nil {
				PrintSystemMessage(w, "Could not write QR image: %v", err)
			} else {
				PrintSystemMessage(w, "QR code saved to %s", opts.QRPath)
			}
		} else if s.Code != "" {
			PrintSystemMessage(w, "QR data: %s", s.Code)
		}
		PrintSystemMessage(w, "Scan it with WhatsApp > Linked devices. Waiting...")
	}

	p := poller.New(
		func(ctx context.Context) (domain.ConnectState, error) { return src.ConnectionState(ctx, name) },
		poller.WithInterval(opts.Interval),
		poller.WithOnState(onState),
		poller.WithOnError(func(err error) { PrintSystemMessage(w, "Status check failed: %v", err) }),
	)

	if _, err := p.Run(ctx); err != nil {
		return err
	}
	PrintSystemMessage(w, "Instance '%s' connected.", name)
	return nil
}

// writeQR decodes a "data:image/png;base64,..." payload (or bare base64) into path.
func writeQR(path, payload string) error {
	if i := strings.Index(payload, ","); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("invalid QR payload: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
