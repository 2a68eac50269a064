//go:build windows

package proc

import "golang.org/x/sys/windows"

// IsRunning reports whether a process with the given pid currently exists.
// Windows recycles handles aggressively, so an openable handle is checked
// against STILL_ACTIVE rather than trusted on its own.
func IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)

	var exitCode uint32
	if err := windows.GetExitCodeProcess(handle, &exitCode); err != nil {
		return false
	}
	return exitCode == windows.STILL_ACTIVE
}
