package process

// Notes:
// - Real termination is exercised by the browser engine integration tests;
//   unit tests only cover the guard clauses and a PID that cannot exist.

import "testing"

func TestKillProcessGroup_IgnoresReservedPIDs(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{-5, 0} {
		if KillProcessGroup(pid) {
			t.Errorf("KillProcessGroup(%d) = true, want false", pid)
		}
	}
}

func TestKillProcessGroup_UnknownPID(t *testing.T) {
	t.Parallel()

	if KillProcessGroup(999999999) {
		t.Error("KillProcessGroup(999999999) = true, want false for a PID that does not exist")
	}
}
