package auth

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	// Role viene del token para cuentas de staff (vet, nurse, admin);
	// vacío para guardianes.
	Role string
}
