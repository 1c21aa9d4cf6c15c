//go:build linux
// +build linux

package twin

import (
	"unsafe"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// TIOCLINUX subcode for reading the keyboard shift state
const tioclinuxGetShiftState = 6

// Bits in the shift state, from linux/keyboard.h
const (
	kgShift = 1 << 0
	kgCtrl  = 1 << 2
	kgAlt   = 1 << 3
)

// LinuxConsoleCorrection returns a KeyCorrection hook that asks the Linux
// console on fd which modifiers are held down. Only use this if TERM is
// "linux".
func LinuxConsoleCorrection(fd int) func(KeyCode) KeyCode {
	return func(key KeyCode) KeyCode {
		state, err := linuxModifierState(fd)
		if err != nil {
			log.Trace("Unable to get Linux console modifier state: ", err)
			return key
		}

		return CorrectModifiers(key, state)
	}
}

func linuxModifierState(fd int) (ModifierState, error) {
	// The ioctl reads the subcode from the argument byte and writes the shift
	// state back into it
	arg := byte(tioclinuxGetShiftState)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(unix.TIOCLINUX), uintptr(unsafe.Pointer(&arg)))
	if errno != 0 {
		return ModifierState{}, errno
	}

	return ModifierState{
		Shift: arg&kgShift != 0,
		Ctrl:  arg&kgCtrl != 0,
		Alt:   arg&kgAlt != 0,
	}, nil
}
