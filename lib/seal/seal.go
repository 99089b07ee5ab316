// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package seal encrypts finished session files with age.
//
// Terminal recordings routinely capture secrets typed or printed
// during the session. Sealing streams the session file into
// "<file>.age", encrypted to one or more x25519 recipients, so that
// only the holders of the matching identities can replay it. The
// plaintext file is left in place; removing it is the operator's call.
//
// Recipients are given as age1... public keys or as paths to files
// with one key per line, the format of age's own -R flag.
package seal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
)

// Suffix is appended to a session path to name its sealed copy.
const Suffix = ".age"

// ParseRecipients resolves each spec to recipients: a string starting
// with "age1" is parsed as a public key, anything else is read as a
// recipients file.
func ParseRecipients(specs []string) ([]age.Recipient, error) {
	var recipients []age.Recipient
	for _, spec := range specs {
		if strings.HasPrefix(spec, "age1") {
			recipient, err := age.ParseX25519Recipient(spec)
			if err != nil {
				return nil, fmt.Errorf("parsing recipient key %q: %w", spec, err)
			}
			recipients = append(recipients, recipient)
			continue
		}

		file, err := os.Open(spec)
		if err != nil {
			return nil, fmt.Errorf("opening recipients file: %w", err)
		}
		parsed, err := age.ParseRecipients(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing recipients file %s: %w", spec, err)
		}
		recipients = append(recipients, parsed...)
	}
	if len(recipients) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	return recipients, nil
}

// LoadIdentities reads age identities (AGE-SECRET-KEY-1... lines) from
// the file at path.
func LoadIdentities(path string) ([]age.Identity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening identity file: %w", err)
	}
	defer file.Close()
	identities, err := age.ParseIdentities(file)
	if err != nil {
		return nil, fmt.Errorf("parsing identity file %s: %w", path, err)
	}
	return identities, nil
}

// Encrypt streams plaintext to output, encrypted to recipients.
func Encrypt(output io.Writer, plaintext io.Reader, recipients ...age.Recipient) error {
	if len(recipients) == 0 {
		return errors.New("at least one recipient is required")
	}
	writer, err := age.Encrypt(output, recipients...)
	if err != nil {
		return fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := io.Copy(writer, plaintext); err != nil {
		return fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing age encryption: %w", err)
	}
	return nil
}

// Decrypt returns a reader over the plaintext of ciphertext.
func Decrypt(ciphertext io.Reader, identities ...age.Identity) (io.Reader, error) {
	reader, err := age.Decrypt(ciphertext, identities...)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return reader, nil
}

// SealFile writes path+Suffix, the contents of path encrypted to
// recipients, and returns its path. A partial output is removed on
// failure.
func SealFile(path string, recipients []age.Recipient) (string, error) {
	input, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer input.Close()

	sealedPath := path + Suffix
	output, err := os.OpenFile(sealedPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", sealedPath, err)
	}

	err = Encrypt(output, input, recipients...)
	if closeErr := output.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(sealedPath)
		return "", fmt.Errorf("sealing %s: %w", path, err)
	}
	return sealedPath, nil
}

// OpenFile decrypts the sealed file at path.
func OpenFile(path string, identities []age.Identity) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()
	reader, err := Decrypt(file, identities...)
	if err != nil {
		return nil, err
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted %s: %w", path, err)
	}
	return plaintext, nil
}
