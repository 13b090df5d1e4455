package manager

import (
	"fmt"
	"strings"

	domainErrors "github.com/cassiomorais/paygate/internal/domain/errors"
	"github.com/cassiomorais/paygate/internal/envelope"
	"github.com/cassiomorais/paygate/internal/providers"
	"github.com/go-viper/mapstructure/v2"
)

const configErrorTag = "Configuration Error"

// Config selects one provider and carries its credentials. Settings must be
// the variant matching Provider.
type Config struct {
	Provider providers.Name   `json:"provider" validate:"required"`
	Settings providers.Config `json:"config" validate:"required"`
}

// ParseConfig decodes loosely typed credentials, as read from the environment
// or a request body, into the variant for name. Keys match the field names
// case-insensitively, with or without underscores.
func ParseConfig(name string, raw map[string]any) (Config, error) {
	provider := providers.Name(strings.ToLower(strings.TrimSpace(name)))
	settings, ok := providers.ConfigFor(provider)
	if !ok {
		return Config{}, unsupportedProvider(name)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           settings,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
	})
	if err != nil {
		return Config{}, configError(err.Error(), err)
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, configError(err.Error(), err)
	}

	return Config{Provider: provider, Settings: settings}, nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

func unsupportedProvider(name string) error {
	return envelope.FromError(fmt.Errorf("[%s] %w: %q", configErrorTag, domainErrors.ErrUnsupportedProvider, name))
}

func configError(msg string, cause error) error {
	return envelope.NewError(envelope.ErrorParams{
		Message: fmt.Sprintf("[%s] %s", configErrorTag, msg),
		Code:    envelope.CodeValidation,
		Cause:   fmt.Errorf("%w: %w", domainErrors.ErrInvalidConfig, cause),
	})
}
