package secret

import (
	"fmt"
	"os"
	"os/user"
)

// KeyMaterial holds the identity inputs the encryption key is derived from.
// The key is scoped to a (host, account, salt) triple: data encrypted on one
// machine under one account is decryptable only with the same triple.
// Construct it once at process start and pass it into NewStore; nothing else
// should read host or account identity for key derivation.
type KeyMaterial struct {
	Host    string
	Account string
	Salt    string
}

// KeyMaterialFromEnv builds KeyMaterial from the running process's ambient
// identity: the OS hostname, the current OS account name, and the optional
// SHERPA_SECRET_SALT environment variable.
func KeyMaterialFromEnv() (KeyMaterial, error) {
	host, err := os.Hostname()
	if err != nil {
		return KeyMaterial{}, fmt.Errorf("resolve hostname: %w", err)
	}

	account := os.Getenv("USER")
	if u, err := user.Current(); err == nil && u.Username != "" {
		account = u.Username
	}
	if account == "" {
		return KeyMaterial{}, fmt.Errorf("resolve account name: no OS user and USER is unset")
	}

	return KeyMaterial{
		Host:    host,
		Account: account,
		Salt:    os.Getenv("SHERPA_SECRET_SALT"),
	}, nil
}
