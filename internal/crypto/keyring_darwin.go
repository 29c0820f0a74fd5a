//go:build darwin

package crypto

// On macOS the key lives in the login Keychain, where it survives reinstalls
// of the binary and can be inspected in Keychain Access under "invoicer".
func newPlatformKeyring() Keyring {
	return &systemKeyring{store: "macOS Keychain"}
}
