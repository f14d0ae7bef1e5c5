package settings

import "github.com/circlesoft/crm/internal/domain/shared"

// ErrInvalidPreference is returned for unknown keys or out-of-range values
var ErrInvalidPreference = shared.NewDomainError("INVALID_PREFERENCE", "Invalid preference value")
