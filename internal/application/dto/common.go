package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// CreatedResponse respuesta de creación: mensaje e ID asignado.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
