// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package credstore reads the flat-file user and traffic tables maintained by the proxy provisioning scripts.
//
// Both files are whitespace-delimited, one record per line:
//
//	# port password
//	2018 password
//
//	# port total used remaining
//	2018 100GB 60GB 40GB
//
// Lines whose first token starts with '#' are comments. Blank and short lines are skipped.
// The files are owned by the provisioning system, so they are re-read on every lookup.
package credstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.mau.fi/ssbot/types"
)

// Store answers point lookups by port against the user and traffic tables.
type Store struct {
	UsersPath   string
	TrafficPath string
}

// New returns a Store reading the given user (ssusers) and traffic (sstraffic) files.
func New(usersPath, trafficPath string) *Store {
	return &Store{UsersPath: usersPath, TrafficPath: trafficPath}
}

// scan calls fn with the fields of every non-comment, non-blank line in file order until fn returns true.
// Lines of any length are accepted.
func scan(path string, fn func(fields []string) (stop bool)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		fields := strings.Fields(line)
		if len(fields) > 0 && !strings.HasPrefix(fields[0], "#") && fn(fields) {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
}

// Authenticate returns true if the user table contains a line with exactly the given port and password.
func (s *Store) Authenticate(port, password string) (bool, error) {
	var found bool
	err := scan(s.UsersPath, func(fields []string) bool {
		found = len(fields) >= 2 && fields[0] == port && fields[1] == password
		return found
	})
	return found, err
}

// Credential returns the first user table entry for the given port.
func (s *Store) Credential(port string) (entry types.CredentialEntry, found bool, err error) {
	err = scan(s.UsersPath, func(fields []string) bool {
		if fields[0] != port || len(fields) < 2 {
			return false
		}
		entry = types.CredentialEntry{Port: fields[0], Password: fields[1]}
		found = true
		return true
	})
	return
}

// Traffic returns the first traffic table entry for the given port.
func (s *Store) Traffic(port string) (entry types.TrafficEntry, found bool, err error) {
	err = scan(s.TrafficPath, func(fields []string) bool {
		if fields[0] != port || len(fields) <= 3 {
			return false
		}
		entry = types.TrafficEntry{Port: fields[0], Total: fields[1], Used: fields[2], Remaining: fields[3]}
		found = true
		return true
	})
	return
}
