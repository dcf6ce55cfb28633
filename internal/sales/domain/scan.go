package domain

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/tair/shop-inventory/internal/apperr"
)

// ErrScanCancelled is returned by a Scanner when the operator aborts.
var ErrScanCancelled = errors.New("scan cancelled")

// ErrNoScanner is returned when a scan is requested without a scanner.
var ErrNoScanner = apperr.Validation("no scanner configured")

// Scanner yields one decoded label payload.
type Scanner interface {
	Scan(ctx context.Context) (string, error)
}

// ScannedLine is a decoded product_id|product_name|quantity|serial payload.
type ScannedLine struct {
	ProductID   uint
	ProductName string
	Quantity    int
	Serial      string
}

// ParseScan decodes a scanner payload. Missing quantity defaults to 1 and a
// missing serial to empty.
func ParseScan(payload string) (ScannedLine, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return ScannedLine{}, apperr.Validation("empty scan payload")
	}
	parts := strings.Split(payload, "|")

	id, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || id == 0 {
		return ScannedLine{}, apperr.Validation("invalid product id %q in scan", parts[0])
	}
	line := ScannedLine{ProductID: uint(id), Quantity: 1}

	if len(parts) > 1 {
		line.ProductName = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		qty, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || qty <= 0 {
			return ScannedLine{}, apperr.Validation("invalid quantity %q in scan", parts[2])
		}
		line.Quantity = qty
	}
	if len(parts) > 3 {
		line.Serial = strings.TrimSpace(parts[3])
	}
	return line, nil
}
