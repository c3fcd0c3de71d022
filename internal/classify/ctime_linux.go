//go:build linux

package classify

import (
	"os"
	"syscall"
	"time"
)

// changeTime returns the inode change time, the closest portable stand-in
// for a creation timestamp on Linux filesystems.
func changeTime(fi os.FileInfo) time.Time {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return fi.ModTime()
}
