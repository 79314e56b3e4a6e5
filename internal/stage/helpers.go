package stage

import (
	"encoding/json"
	"errors"
	"strings"

	"clipforge/internal/services"
)

// ParseArtifact decodes a JSON artifact column produced by an earlier stage.
// On failure it returns a services.ErrValidation suitable for stage Execute
// methods; the message names the artifact and the stage that produces it so
// the operator knows which stage to retry.
func ParseArtifact(stageName, artifact, raw string, target any) error {
	if strings.TrimSpace(raw) == "" {
		return services.Wrap(
			services.ErrValidation, stageName, "parse "+artifact,
			artifact+" missing; rerun the stage that produces it", nil)
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return services.Wrap(
			services.ErrValidation, stageName, "parse "+artifact,
			artifact+" invalid; rerun the stage that produces it", err)
	}
	return nil
}

// EncodeArtifact serializes a stage artifact for storage on the queue item.
func EncodeArtifact(stageName, artifact string, value any) (string, error) {
	if value == nil {
		return "", services.Wrap(
			services.ErrValidation, stageName, "encode "+artifact,
			"nil artifact", errors.New("nil value"))
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", services.Wrap(
			services.ErrTransient, stageName, "encode "+artifact,
			"serialize failed", err)
	}
	return string(encoded), nil
}
