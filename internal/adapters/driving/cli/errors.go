package cli

import (
	"errors"
	"fmt"
)

var (
	errChatNotConfigured      = errors.New("chat service not configured")
	errIngestionNotConfigured = errors.New("ingestion service not configured")
	errDocumentNotConfigured  = errors.New("document service not configured")
)

// notConfigured explains a missing AI-backed service.
func notConfigured(base error) error {
	if aiInitErr != nil {
		return fmt.Errorf("%w: %w", base, aiInitErr)
	}
	return base
}
