package core

import "testing"

// TestInstallSigintNestedIsNoop mirrors the C source's single module-scope
// relay: a second InstallSigint call while one is active must not replace
// it, and its teardown must leave the outer relay installed.
func TestInstallSigintNestedIsNoop(t *testing.T) {
	status := NewLoopStatus()
	outerTeardown := InstallSigint(status)
	defer outerTeardown()

	innerStatus := NewLoopStatus()
	innerTeardown := InstallSigint(innerStatus)
	innerTeardown()

	if sigintActive == nil {
		t.Fatalf("expected outer relay to remain installed after inner teardown")
	}
}

// TestInstallSigintTeardownClearsRelay checks that tearing down the only
// active relay clears the module-scope handle, so a later InstallSigint
// call installs a fresh one rather than reusing a torn-down handle.
func TestInstallSigintTeardownClearsRelay(t *testing.T) {
	status := NewLoopStatus()
	teardown := InstallSigint(status)
	teardown()

	if sigintActive != nil {
		t.Fatalf("expected relay cleared after teardown")
	}

	status2 := NewLoopStatus()
	teardown2 := InstallSigint(status2)
	defer teardown2()

	if sigintActive == nil {
		t.Fatalf("expected a fresh relay installed")
	}
}
