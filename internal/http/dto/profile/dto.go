// Package profile contiene los DTOs del endpoint de edición de perfil.
package profile

import "encoding/json"

// UpdateRequest es el body de PUT /v1/profile.
// Overrides se valida como registro tipado en el service (keys desconocidas
// se rechazan), no se mergea como mapa libre.
type UpdateRequest struct {
	DisplayName *string         `json:"display_name,omitempty"`
	Locale      *string         `json:"locale,omitempty"`
	Timezone    *string         `json:"timezone,omitempty"`
	Overrides   json.RawMessage `json:"overrides,omitempty"`
}
