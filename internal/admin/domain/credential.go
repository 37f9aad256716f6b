package domain

// Credential is the single administrator identity, loaded from configuration
// and never persisted. Password holds either a plaintext secret (compared in
// constant time) or a PHC-encoded Argon2id hash.
type Credential struct {
	UserID   string
	Username string
	Password string
}
