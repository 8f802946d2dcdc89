package vm

import (
	"encoding/binary"

	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/memory"
	"github.com/zkir-vm/zkir/runtime"
)

// Syscalls address their number and arguments through S0-S3 (R10-R13), kept
// deliberately distinct from the A0-A5 general call ABI: an ecall is not a
// function call and sharing the argument registers would make it
// impossible to tell, from a trace row alone, which convention governed a
// given cycle (spec.md §4.11).
const (
	sysNumReg  = isa.S0
	sysArg0Reg = isa.S1
	sysArg1Reg = isa.S2
	sysArg2Reg = isa.S3
)

// readMessage reads length bytes starting at addr, one traced byte Read
// MemoryOp per byte, for syscalls whose input is a memory-resident buffer.
func (v *VM) readMessage(addr, length uint64) ([]byte, error) {
	buf := make([]byte, length)
	for i := uint64(0); i < length; i++ {
		b, err := v.Mem.Read(addr+i, 1)
		if err != nil {
			return nil, err
		}
		buf[i] = byte(b)
		v.recordMemOp(memory.NewRead(addr+i, b, v.Cycle, 1, isa.TypeWidthBound(1)))
	}
	return buf, nil
}

// writeDigest stores a 32-byte digest at addr as four little-endian
// uint64 writes, each a traced Write MemoryOp.
func (v *VM) writeDigest(addr uint64, digest [32]byte) error {
	for i := 0; i < 4; i++ {
		word := binary.LittleEndian.Uint64(digest[i*8 : i*8+8])
		if err := v.Mem.Write(addr+uint64(i)*8, word, 8); err != nil {
			return err
		}
		v.recordMemOp(memory.NewWrite(addr+uint64(i)*8, word, v.Cycle, 8, isa.ProgramWidthBound(64)))
	}
	return nil
}

// syscall dispatches the ecall whose number is in S0 (spec.md §4.11, §6).
// It returns the successor pc and whether execution may continue; SysExit
// and any dispatch error both return ok=false after setting v.Halt.
func (v *VM) syscall(pc, fallthroughPC uint64) (uint64, bool) {
	number := v.Regs.Read(sysNumReg)

	switch runtime.SyscallNumber(number) {
	case runtime.SysExit:
		v.Halt = HaltReason{Kind: HaltExit, ExitCode: v.Regs.Read(sysArg0Reg)}
		return pc, false

	case runtime.SysRead:
		val, ok := v.InputTape.Pop()
		if !ok {
			val = 0
		}
		v.Regs.WriteNormalized(sysArg0Reg, val, isa.ProgramWidthBound(v.Cfg.DataBits()))
		return fallthroughPC, true

	case runtime.SysWrite:
		v.OutputTape.Push(v.Regs.Read(sysArg0Reg))
		return fallthroughPC, true

	case runtime.SysSha256:
		msg, err := v.readMessage(v.Regs.Read(sysArg0Reg), v.Regs.Read(sysArg1Reg))
		if err != nil {
			v.faultFromMemErr(err, pc)
			return pc, false
		}
		witness, digest, err := runtime.ComputeSha256Witness(msg, v.Cycle)
		if err != nil {
			v.fault(FaultInvalidSyscall, pc, err.Error())
			return pc, false
		}
		v.Witnesses.Sha256 = append(v.Witnesses.Sha256, *witness)
		if err := v.writeDigest(v.Regs.Read(sysArg2Reg), digest); err != nil {
			v.faultFromMemErr(err, pc)
			return pc, false
		}
		v.Regs.WriteNormalized(sysArg0Reg, binary.LittleEndian.Uint64(digest[:8])&runtime.MaskN(v.Cfg.DataBits()),
			isa.CryptoOutputBound(isa.CryptoSha256))
		v.RangeCheck.Defer(v.Regs.Read(sysArg0Reg), v.Regs.ReadBound(sysArg0Reg), pc)
		return fallthroughPC, true

	case runtime.SysKeccak256:
		msg, err := v.readMessage(v.Regs.Read(sysArg0Reg), v.Regs.Read(sysArg1Reg))
		if err != nil {
			v.faultFromMemErr(err, pc)
			return pc, false
		}
		witness, digest, err := runtime.ComputeKeccak256Witness(msg, v.Cycle)
		if err != nil {
			v.fault(FaultInvalidSyscall, pc, err.Error())
			return pc, false
		}
		v.Witnesses.Keccak256 = append(v.Witnesses.Keccak256, *witness)
		if err := v.writeDigest(v.Regs.Read(sysArg2Reg), digest); err != nil {
			v.faultFromMemErr(err, pc)
			return pc, false
		}
		v.Regs.WriteNormalized(sysArg0Reg, binary.LittleEndian.Uint64(digest[:8])&runtime.MaskN(v.Cfg.DataBits()),
			isa.CryptoOutputBound(isa.CryptoKeccak256))
		v.RangeCheck.Defer(v.Regs.Read(sysArg0Reg), v.Regs.ReadBound(sysArg0Reg), pc)
		return fallthroughPC, true

	case runtime.SysBlake3:
		msg, err := v.readMessage(v.Regs.Read(sysArg0Reg), v.Regs.Read(sysArg1Reg))
		if err != nil {
			v.faultFromMemErr(err, pc)
			return pc, false
		}
		witness, digest, err := runtime.ComputeBlake3Witness(msg, v.Cycle)
		if err != nil {
			v.fault(FaultInvalidSyscall, pc, err.Error())
			return pc, false
		}
		v.Witnesses.Blake3 = append(v.Witnesses.Blake3, *witness)
		if err := v.writeDigest(v.Regs.Read(sysArg2Reg), digest); err != nil {
			v.faultFromMemErr(err, pc)
			return pc, false
		}
		v.Regs.WriteNormalized(sysArg0Reg, binary.LittleEndian.Uint64(digest[:8])&runtime.MaskN(v.Cfg.DataBits()),
			isa.CryptoOutputBound(isa.CryptoBlake3))
		v.RangeCheck.Defer(v.Regs.Read(sysArg0Reg), v.Regs.ReadBound(sysArg0Reg), pc)
		return fallthroughPC, true

	case runtime.SysPoseidon2:
		a, b := v.Regs.Read(sysArg0Reg), v.Regs.Read(sysArg1Reg)
		witness, result := runtime.ComputePoseidon2(a, b, v.Cycle)
		v.Witnesses.Poseidon2 = append(v.Witnesses.Poseidon2, *witness)
		v.Regs.WriteNormalized(sysArg0Reg, uint64(result)&runtime.MaskN(v.Cfg.DataBits()),
			isa.CryptoOutputBound(isa.CryptoPoseidon2))
		v.RangeCheck.Defer(v.Regs.Read(sysArg0Reg), v.Regs.ReadBound(sysArg0Reg), pc)
		return fallthroughPC, true

	default:
		v.fault(FaultInvalidSyscall, pc, (&runtime.InvalidSyscallError{Number: number}).Error())
		return pc, false
	}
}
