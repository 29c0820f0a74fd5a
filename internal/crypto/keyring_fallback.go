//go:build !darwin

package crypto

// Linux uses the freedesktop Secret Service and Windows the Credential
// Manager. Headless machines usually have neither and rely on INVOICER_DB_KEY.
func newPlatformKeyring() Keyring {
	return &systemKeyring{store: "system keyring"}
}
