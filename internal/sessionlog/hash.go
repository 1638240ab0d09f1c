package sessionlog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed record ids. The version
// suffix enables future algorithm migration.
const (
	domainAttempt   = "gamesym/attempt/v1"
	domainTelemetry = "gamesym/telemetry/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte
// separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// attemptID computes the content-addressed id of a search attempt.
// The id is stable given the same session, ordering, and outcome.
func attemptID(session string, seq int64, module, store, filename, buildID, outcome string) (string, error) {
	canonical, err := marshalCanonical(map[string]any{
		"session":  session,
		"seq":      seq,
		"module":   module,
		"store":    store,
		"filename": filename,
		"build_id": buildID,
		"outcome":  outcome,
	})
	if err != nil {
		return "", fmt.Errorf("attemptID: failed to marshal: %w", err)
	}
	return hashWithDomain(domainAttempt, canonical), nil
}

// telemetryID computes the content-addressed id of a batch telemetry
// record.
func telemetryID(session string, seq int64, modules, binBefore, binAfter, symBefore, symAfter int) (string, error) {
	canonical, err := marshalCanonical(map[string]any{
		"session":         session,
		"seq":             seq,
		"modules":         modules,
		"binaries_before": binBefore,
		"binaries_after":  binAfter,
		"symbols_before":  symBefore,
		"symbols_after":   symAfter,
	})
	if err != nil {
		return "", fmt.Errorf("telemetryID: failed to marshal: %w", err)
	}
	return hashWithDomain(domainTelemetry, canonical), nil
}
