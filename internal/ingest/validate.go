package ingest

import (
	"fmt"
	"sort"
	"strings"

	"loom/internal/services"
)

// Validate checks that a payload carries everything assembly needs. Only
// deliveries for a completed section are accepted; anything else is a
// validation failure, never retried.
func Validate(payload *Payload, completedStatus string) error {
	if payload == nil {
		return services.Wrap(services.ErrValidation, "ingest", "validate", "payload is nil", nil)
	}

	vars := payload.Contact.Variables
	required := map[string]string{
		"contact.name":                      payload.Contact.Name,
		"contact.email":                     payload.Contact.Email,
		"contact.variables.contact_user_id": vars.ContactUserID,
		"contact.variables.section_id":      vars.SectionID,
		"contact.variables.section_name":    vars.SectionName,
		"contact.variables.series_id":       vars.SeriesID,
		"contact.variables.tenant_id":       vars.TenantID,
	}
	var missing []string
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return services.Wrap(services.ErrValidation, "ingest", "validate",
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")), nil)
	}

	if !strings.EqualFold(strings.TrimSpace(payload.Contact.Status), completedStatus) {
		return services.Wrap(services.ErrValidation, "ingest", "validate",
			fmt.Sprintf("contact status %q is not %q", payload.Contact.Status, completedStatus), nil)
	}
	return nil
}
