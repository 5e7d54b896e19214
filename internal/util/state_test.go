package util

import (
	"testing"
)

type connState string

const (
	connIdle    connState = "idle"
	connDialing connState = "dialing"
	connOpen    connState = "open"
	connClosed  connState = "closed"
)

func connTransitions() StateTransitions[connState] {
	return StateTransitions[connState]{
		connIdle:    SetOf(connDialing),
		connDialing: SetOf(connOpen, connClosed),
		connOpen:    SetOf(connClosed),
		connClosed:  {},
	}
}

func TestCanTransition(t *testing.T) {
	transitions := connTransitions()

	valid := [][2]connState{
		{connIdle, connDialing},
		{connDialing, connOpen},
		{connDialing, connClosed},
		{connOpen, connClosed},
	}
	for _, pair := range valid {
		if !transitions.CanTransition(pair[0], pair[1]) {
			t.Errorf("should allow %s -> %s", pair[0], pair[1])
		}
	}

	invalid := [][2]connState{
		{connIdle, connOpen},
		{connClosed, connOpen},
		{connOpen, connDialing},
	}
	for _, pair := range invalid {
		if transitions.CanTransition(pair[0], pair[1]) {
			t.Errorf("should not allow %s -> %s", pair[0], pair[1])
		}
	}

	if transitions.CanTransition("unknown", connOpen) {
		t.Error("should not allow transition from unknown state")
	}
}

func TestIsTerminal(t *testing.T) {
	transitions := connTransitions()

	if transitions.IsTerminal(connIdle) {
		t.Error("idle should not be terminal")
	}
	if transitions.IsTerminal(connOpen) {
		t.Error("open should not be terminal")
	}
	if !transitions.IsTerminal(connClosed) {
		t.Error("closed should be terminal")
	}
	if transitions.IsTerminal("unknown") {
		t.Error("unknown state should not be terminal")
	}
}
