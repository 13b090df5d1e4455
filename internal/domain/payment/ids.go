package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var now = time.Now

// PlaceholderID synthesizes a gateway identifier when the caller supplied
// none: <prefix>_<unix-millis>_<8 hex chars>. The random suffix keeps two
// calls in the same millisecond apart.
func PlaceholderID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, now().UnixMilli(), suffix)
}
