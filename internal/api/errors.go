package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a request the backend answered but rejected. Mensaje carries
// the server's own message so handlers can surface it verbatim.
type APIError struct {
	Status  int
	Mensaje string
}

func (e *APIError) Error() string {
	if e.Mensaje != "" {
		return e.Mensaje
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// UserMessage maps the failure to the Spanish text shown to the user,
// preferring the backend's message when it sent one.
func (e *APIError) UserMessage() string {
	if e.Mensaje != "" {
		return e.Mensaje
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return "No autorizado. La sesión del bot no es válida."
	case http.StatusForbidden:
		return "No tienes permisos para realizar esta acción."
	case http.StatusNotFound:
		return "El recurso solicitado no fue encontrado."
	case http.StatusTooManyRequests:
		return "Has superado el límite de solicitudes. Espera un momento."
	case http.StatusInternalServerError:
		return "Error interno del servidor. Intenta más tarde."
	default:
		return "Ha ocurrido un error inesperado."
	}
}

// AsAPIError unwraps err into an *APIError if the backend rejected the
// request; transport failures return false.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
