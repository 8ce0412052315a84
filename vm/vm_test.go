package vm

import (
	"bytes"
	"testing"
)

func newTestVM() (*VM, *bytes.Buffer) {
	var out bytes.Buffer
	kb := NewQueueKeyboard(nil)
	return New(kb, &out), &out
}

func TestAddSetsPositiveCC(t *testing.T) {
	v, _ := newTestVM()
	v.CPU.R[1] = 31
	v.CPU.R[2] = 42
	// ADD R0,R1,R2
	v.Load(0x3000, []uint16{0x1042})
	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v.CPU.R[0] != 73 {
		t.Errorf("R0 = %d, want 73", v.CPU.R[0])
	}
	if !v.CPU.P || v.CPU.N || v.CPU.Z {
		t.Errorf("CC = N:%v Z:%v P:%v, want P only", v.CPU.N, v.CPU.Z, v.CPU.P)
	}
}

func TestAndZeroSetsZ(t *testing.T) {
	v, _ := newTestVM()
	v.CPU.R[1] = 8
	// AND R0,R1,#7
	v.Load(0x3000, []uint16{0x5067})
	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v.CPU.R[0] != 0 {
		t.Errorf("R0 = %d, want 0", v.CPU.R[0])
	}
	if !v.CPU.Z || v.CPU.N || v.CPU.P {
		t.Errorf("CC = N:%v Z:%v P:%v, want Z only", v.CPU.N, v.CPU.Z, v.CPU.P)
	}
}

func TestBranchTargetsPostIncrementPC(t *testing.T) {
	v, _ := newTestVM()
	v.CPU.Z = true // as if a prior CC-setting instruction established Z
	// BRnzp #0x40 at 0x3000: PC after fetch = 0x3001, branch to 0x3041
	v.Load(0x3000, []uint16{0x0E40})
	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v.CPU.PC != 0x3041 {
		t.Errorf("PC = %#x, want 0x3041", v.CPU.PC)
	}
}

func TestLdReadsPCRelative(t *testing.T) {
	v, _ := newTestVM()
	// LD R1,#0: instruction at 0x3000, post-increment PC is 0x3001, so
	// the effective address is 0x3001, the very next word.
	v.Load(0x3000, []uint16{0x2200, 42})
	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v.CPU.R[1] != 42 {
		t.Errorf("R1 = %d, want 42", v.CPU.R[1])
	}
	if !v.CPU.P {
		t.Error("expected P set for positive load")
	}
}

func TestRTIIsPrivileged(t *testing.T) {
	v, _ := newTestVM()
	v.Load(0x3000, []uint16{0x8000})
	err := v.Step()
	if err == nil {
		t.Fatal("expected PrivilegedInstruction error")
	}
	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Kind != ErrPrivilegedInstruction {
		t.Errorf("got %v, want PrivilegedInstruction", err)
	}
}

func TestStoreToKBSRIsIllegalMemory(t *testing.T) {
	v, _ := newTestVM()
	v.CPU.R[0] = AddrKBSR
	v.CPU.R[1] = 1
	// STR R1,R0,#0: stores R1 at the address held in R0, targeting KBSR.
	v.Load(0x3000, []uint16{0x7200})
	err := v.Step()
	if err == nil {
		t.Fatal("expected IllegalMemory error")
	}
	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Kind != ErrIllegalMemory {
		t.Errorf("got %v, want IllegalMemory", err)
	}
}

func TestReservedOpcodeIsIllegal(t *testing.T) {
	v, _ := newTestVM()
	v.Load(0x3000, []uint16{0xD000})
	err := v.Step()
	if err == nil {
		t.Fatal("expected IllegalInstruction error")
	}
	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Kind != ErrIllegalInstruction {
		t.Errorf("got %v, want IllegalInstruction", err)
	}
}

func TestPutsWritesUntilTerminator(t *testing.T) {
	v, out := newTestVM()
	v.CPU.R[0] = 0x4000
	v.Mem.Write(0x4000, 0x0048)
	v.Mem.Write(0x4001, 0x0049)
	v.Mem.Write(0x4002, 0x0000)
	v.Load(0x3000, []uint16{0xF022}) // TRAP PUTS
	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if out.String() != "HI" {
		t.Errorf("output = %q, want %q", out.String(), "HI")
	}
}

func TestHaltStopsTheLoop(t *testing.T) {
	v, _ := newTestVM()
	v.Load(0x3000, []uint16{0xF025})
	if err := v.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !v.Halted {
		t.Error("expected VM to be halted")
	}
}
