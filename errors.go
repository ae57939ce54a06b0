// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ssbot

import (
	"errors"
)

// Errors returned by NewProcessor when a required collaborator is missing.
var (
	ErrNoMessenger       = errors.New("processor requires a messenger")
	ErrNoBindingStore    = errors.New("messenger doesn't expose remark names and no binding store was given")
	ErrNoCredentialStore = errors.New("processor requires a credential store")
	ErrNoProvisioner     = errors.New("processor requires a provisioner")
	ErrNoIPResolver      = errors.New("processor requires an IP resolver")
)

// Errors returned by Processor.Dispatch.
var (
	ErrNilEvent = errors.New("event payload is nil")
)
