package emu

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// ARM EABI Linux syscall numbers.
const (
	SyscallExit      uint32 = 1   // exit(status)
	SyscallRead      uint32 = 3   // read(fd, buf, count)
	SyscallWrite     uint32 = 4   // write(fd, buf, count)
	SyscallOpen      uint32 = 5   // open(path, flags, mode)
	SyscallClose     uint32 = 6   // close(fd)
	SyscallLseek     uint32 = 19  // lseek(fd, offset, whence)
	SyscallExitGroup uint32 = 248 // exit_group(status)
)

// Linux error codes.
const (
	ENOENT = 2  // No such file or directory
	EIO    = 5  // I/O error
	EBADF  = 9  // Bad file descriptor
	EACCES = 13 // Permission denied
	EEXIST = 17 // File exists
	EINVAL = 22 // Invalid argument
	ENOSYS = 38 // Function not implemented
)

const maxPathLen = 4096

// MaxTransfer bounds the bytes moved by a single read or write. Larger
// requests return a short count.
const MaxTransfer = 64 * 1024

func transferSize(count uint32) uint32 {
	return min(count, MaxTransfer)
}

// SyscallResult represents the result of a syscall execution.
type SyscallResult struct {
	// Exited is true if the syscall caused program termination.
	Exited bool

	// ExitCode is the exit status if Exited is true.
	ExitCode int32
}

// SyscallHandler services SWI instructions on behalf of a hosted program.
type SyscallHandler interface {
	// Handle executes the syscall indicated by the register file state.
	// ARM EABI convention:
	//   - Syscall number in R7
	//   - Arguments in R0-R2
	//   - Return value in R0
	Handle() SyscallResult
}

// DefaultSyscallHandler implements a small subset of Linux on the host.
type DefaultSyscallHandler struct {
	regFile *RegFile
	bus     Bus
	fdTable *FDTable
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// NewDefaultSyscallHandler creates a default syscall handler.
func NewDefaultSyscallHandler(regFile *RegFile, bus Bus, stdout, stderr io.Writer) *DefaultSyscallHandler {
	return &DefaultSyscallHandler{
		regFile: regFile,
		bus:     bus,
		fdTable: NewFDTable(),
		stdout:  stdout,
		stderr:  stderr,
	}
}

// SetStdin sets the stdin reader for the syscall handler.
func (h *DefaultSyscallHandler) SetStdin(stdin io.Reader) {
	h.stdin = stdin
}

// FDTable returns the handler's file descriptor table.
func (h *DefaultSyscallHandler) FDTable() *FDTable {
	return h.fdTable
}

// Handle executes the syscall indicated by the register file state.
func (h *DefaultSyscallHandler) Handle() SyscallResult {
	switch h.regFile.ReadReg(7) {
	case SyscallExit, SyscallExitGroup:
		h.fdTable.CloseAll()
		return SyscallResult{Exited: true, ExitCode: int32(h.regFile.ReadReg(0))}
	case SyscallRead:
		h.handleRead()
	case SyscallWrite:
		h.handleWrite()
	case SyscallOpen:
		h.handleOpen()
	case SyscallClose:
		h.handleClose()
	case SyscallLseek:
		h.handleLseek()
	default:
		h.setError(ENOSYS)
	}
	return SyscallResult{}
}

func (h *DefaultSyscallHandler) handleRead() {
	fd := h.regFile.ReadReg(0)
	bufPtr := h.regFile.ReadReg(1)

	if fd != 0 {
		if _, ok := h.fdTable.Get(fd); !ok {
			h.setError(EBADF)
			return
		}
	} else if h.stdin == nil {
		// No stdin configured: EOF.
		h.regFile.WriteReg(0, 0)
		return
	}

	buf := make([]byte, transferSize(h.regFile.ReadReg(2)))

	var n int
	var err error
	if fd == 0 {
		n, err = h.stdin.Read(buf)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	} else {
		n, err = h.fdTable.Read(fd, buf)
	}
	if err != nil && n == 0 {
		h.setError(EIO)
		return
	}

	for i := 0; i < n; i++ {
		h.bus.Write8(bufPtr+uint32(i), buf[i])
	}
	h.regFile.WriteReg(0, uint32(n))
}

func (h *DefaultSyscallHandler) handleWrite() {
	fd := h.regFile.ReadReg(0)
	bufPtr := h.regFile.ReadReg(1)

	if fd != 1 && fd != 2 {
		if _, ok := h.fdTable.Get(fd); !ok {
			h.setError(EBADF)
			return
		}
	}

	buf := make([]byte, transferSize(h.regFile.ReadReg(2)))
	for i := range buf {
		buf[i] = h.bus.Read8(bufPtr + uint32(i))
	}

	var n int
	var err error
	switch fd {
	case 1:
		n, err = h.stdout.Write(buf)
	case 2:
		n, err = h.stderr.Write(buf)
	default:
		n, err = h.fdTable.Write(fd, buf)
	}
	if err != nil {
		h.setError(EIO)
		return
	}

	h.regFile.WriteReg(0, uint32(n))
}

func (h *DefaultSyscallHandler) handleOpen() {
	path, ok := h.readCString(h.regFile.ReadReg(0))
	if !ok {
		h.setError(EINVAL)
		return
	}

	fd, err := h.fdTable.Open(path, h.regFile.ReadReg(1), os.FileMode(h.regFile.ReadReg(2)&0o777))
	if err != nil {
		h.setError(errnoOf(err))
		return
	}

	h.regFile.WriteReg(0, fd)
}

func (h *DefaultSyscallHandler) handleClose() {
	fd := h.regFile.ReadReg(0)
	if fd <= 2 {
		h.regFile.WriteReg(0, 0)
		return
	}
	if err := h.fdTable.Close(fd); err != nil {
		h.setError(EBADF)
		return
	}
	h.regFile.WriteReg(0, 0)
}

func (h *DefaultSyscallHandler) handleLseek() {
	fd := h.regFile.ReadReg(0)
	offset := int64(int32(h.regFile.ReadReg(1)))
	whence := int(h.regFile.ReadReg(2))

	if whence > io.SeekEnd {
		h.setError(EINVAL)
		return
	}
	if _, ok := h.fdTable.Get(fd); !ok {
		h.setError(EBADF)
		return
	}

	pos, err := h.fdTable.Seek(fd, offset, whence)
	if err != nil {
		h.setError(EINVAL)
		return
	}
	h.regFile.WriteReg(0, uint32(pos))
}

// readCString reads a NUL-terminated guest string.
func (h *DefaultSyscallHandler) readCString(addr uint32) (string, bool) {
	buf := make([]byte, 0, 64)
	for i := uint32(0); i < maxPathLen; i++ {
		b := h.bus.Read8(addr + i)
		if b == 0 {
			return string(buf), true
		}
		buf = append(buf, b)
	}
	return "", false
}

// setError sets R0 to -errno (as two's complement).
func (h *DefaultSyscallHandler) setError(errno int) {
	h.regFile.WriteReg(0, uint32(-int32(errno)))
}

func errnoOf(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ENOENT
	case errors.Is(err, fs.ErrExist):
		return EEXIST
	case errors.Is(err, fs.ErrPermission):
		return EACCES
	default:
		return EIO
	}
}
