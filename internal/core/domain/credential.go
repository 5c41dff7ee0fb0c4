package domain

// SigningCredential is the deployment's active API credential. The server
// holds the authoritative copy; the capturing client holds a copy obtained
// through a separate enrollment step.
type SigningCredential struct {
	APIKey string
	Secret string
}
