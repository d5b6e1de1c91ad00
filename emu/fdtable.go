package emu

import (
	"io"
	"os"
)

// Guest open(2) flags, ARM EABI values.
const (
	guestOpenAccMode = 0o3
	guestOpenCreat   = 0o100
	guestOpenExcl    = 0o200
	guestOpenTrunc   = 0o1000
	guestOpenAppend  = 0o2000
)

// FileDescriptor is one guest file descriptor backed by a host file.
type FileDescriptor struct {
	HostFile *os.File
	Path     string
}

// FDTable maps guest file descriptors to host files. Descriptors 0-2 are
// reserved for the standard streams, which the syscall handler serves
// itself.
type FDTable struct {
	fds    map[uint32]*FileDescriptor
	nextFD uint32
}

// NewFDTable creates a table with the standard streams reserved.
func NewFDTable() *FDTable {
	return &FDTable{
		fds:    make(map[uint32]*FileDescriptor),
		nextFD: 3,
	}
}

// hostOpenFlags converts guest open flags to host os flags.
func hostOpenFlags(flags uint32) int {
	var host int
	switch flags & guestOpenAccMode {
	case 1:
		host = os.O_WRONLY
	case 2:
		host = os.O_RDWR
	default:
		host = os.O_RDONLY
	}
	if flags&guestOpenCreat != 0 {
		host |= os.O_CREATE
	}
	if flags&guestOpenExcl != 0 {
		host |= os.O_EXCL
	}
	if flags&guestOpenTrunc != 0 {
		host |= os.O_TRUNC
	}
	if flags&guestOpenAppend != 0 {
		host |= os.O_APPEND
	}
	return host
}

// Open opens path on the host with guest flags and returns a new
// descriptor.
func (t *FDTable) Open(path string, flags uint32, mode os.FileMode) (uint32, error) {
	hostFile, err := os.OpenFile(path, hostOpenFlags(flags), mode)
	if err != nil {
		return 0, err
	}

	fd := t.nextFD
	t.nextFD++
	t.fds[fd] = &FileDescriptor{HostFile: hostFile, Path: path}

	return fd, nil
}

// Close closes a descriptor opened with Open.
func (t *FDTable) Close(fd uint32) error {
	entry, ok := t.fds[fd]
	if !ok {
		return os.ErrInvalid
	}
	delete(t.fds, fd)
	return entry.HostFile.Close()
}

// Get returns the open descriptor fd.
func (t *FDTable) Get(fd uint32) (*FileDescriptor, bool) {
	entry, ok := t.fds[fd]
	return entry, ok
}

// Read reads from a host-backed descriptor.
func (t *FDTable) Read(fd uint32, buf []byte) (int, error) {
	entry, ok := t.fds[fd]
	if !ok {
		return 0, os.ErrInvalid
	}
	n, err := entry.HostFile.Read(buf)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// Write writes to a host-backed descriptor.
func (t *FDTable) Write(fd uint32, buf []byte) (int, error) {
	entry, ok := t.fds[fd]
	if !ok {
		return 0, os.ErrInvalid
	}
	return entry.HostFile.Write(buf)
}

// Seek sets the file position of a host-backed descriptor.
func (t *FDTable) Seek(fd uint32, offset int64, whence int) (int64, error) {
	entry, ok := t.fds[fd]
	if !ok {
		return 0, os.ErrInvalid
	}
	return entry.HostFile.Seek(offset, whence)
}

// CloseAll closes every host file still open.
func (t *FDTable) CloseAll() {
	for fd, entry := range t.fds {
		_ = entry.HostFile.Close()
		delete(t.fds, fd)
	}
}
