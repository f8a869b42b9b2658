package hostapi

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"runtime"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeychainPlatform is the only platform whose credential store is exposed.
const KeychainPlatform = "darwin"

// ErrKeychainUnsupported is returned on every platform but macOS.
var ErrKeychainUnsupported = errors.New("keychain API is only supported on macOS")

// Keychain reads generic passwords by service name.
type Keychain interface {
	ReadGenericPassword(service string) (string, error)
}

// SystemKeychain reads from the OS credential store for the current user.
type SystemKeychain struct {
	// Account pins the lookup to one account. When empty the current
	// username is tried first, then any item stored under the service.
	Account string

	findByService func(service string) (string, error)
}

// ReadGenericPassword looks up the secret stored for service.
func (k SystemKeychain) ReadGenericPassword(service string) (string, error) {
	secret, err := keyring.Get(service, k.account())
	if errors.Is(err, keyring.ErrNotFound) && k.Account == "" {
		find := k.findByService
		if find == nil {
			find = findGenericPassword
		}
		secret, err = find(service)
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("keychain item not found: %s", service)
	}
	if err != nil {
		return "", fmt.Errorf("keychain read failed for %s: %w", service, err)
	}
	return secret, nil
}

func (k SystemKeychain) account() string {
	if k.Account != "" {
		return k.Account
	}
	if current, err := user.Current(); err == nil && current.Username != "" {
		return current.Username
	}
	return os.Getenv("USER")
}

// findGenericPassword matches on service alone, which go-keyring cannot do.
func findGenericPassword(service string) (string, error) {
	if runtime.GOOS != KeychainPlatform {
		return "", keyring.ErrNotFound
	}

	out, err := exec.Command("security", "find-generic-password", "-s", service, "-w").Output()
	if err != nil {
		var exitErr *exec.ExitError
		// 44 is errSecItemNotFound.
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 44 {
			return "", keyring.ErrNotFound
		}
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}

func newKeychainAPI(platform string, store Keychain) KeychainAPI {
	return KeychainAPI{
		ReadGenericPassword: func(service string) (string, error) {
			if platform != KeychainPlatform {
				return "", ErrKeychainUnsupported
			}
			if service == "" {
				return "", errors.New("keychain service name is empty")
			}
			return store.ReadGenericPassword(service)
		},
	}
}
