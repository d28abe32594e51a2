package domain

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: email duplicado).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials indica email o password incorrectos.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserDisabled indica que el perfil está desactivado.
	ErrUserDisabled = errors.New("user disabled")

	// ErrSessionExpired indica que la sesión ya expiró.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoSession indica que no hay sesión persistida.
	ErrNoSession = errors.New("no session")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
