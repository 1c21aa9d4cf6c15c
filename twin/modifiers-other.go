//go:build !linux
// +build !linux

package twin

// LinuxConsoleCorrection returns a KeyCorrection hook that leaves all keys
// alone, there is no Linux console here.
func LinuxConsoleCorrection(fd int) func(KeyCode) KeyCode {
	return func(key KeyCode) KeyCode {
		return key
	}
}
