// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package capture

import (
	"errors"
	"time"
)

// Attack shape replayed by SimulateAttack.
const (
	attackRequests      = 30
	attackBadHeaderStep = 5
	attackBadIPStep     = 7
	attackPastes        = 5
	attackFailedAuth    = 5
)

// SimulateAttack replays a burst of scripted requests with spoofed headers
// and flagged addresses, a paste flood, failed logins and open devtools.
// All input goes through the tracker, so the engine sees nothing it would
// not see from a real client.
func SimulateAttack(t *Tracker, at time.Time) error {
	var errs []error

	for i := 0; i < attackRequests; i++ {
		errs = append(errs, t.Request(at, i%attackBadHeaderStep == 0, i%attackBadIPStep == 0))
	}
	errs = append(errs,
		t.Paste(at, attackPastes),
		t.FailedAuth(attackFailedAuth),
		t.Devtools(true),
	)
	return errors.Join(errs...)
}
