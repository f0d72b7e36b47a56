package launchd

import (
	"os/user"
	"strconv"

	cerr "github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// ConsoleUser is the user logged in at the physical console; launch agents
// run in that user's gui domain.
type ConsoleUser struct {
	Name string
	UID  string
}

// LookupConsoleUser returns the owner of device (normally /dev/console).
func LookupConsoleUser(device string) (*ConsoleUser, error) {
	var st unix.Stat_t
	if err := unix.Stat(device, &st); err != nil {
		return nil, cerr.Wrapf(err, "stat %s", device)
	}

	uid := strconv.FormatUint(uint64(st.Uid), 10)
	cu := &ConsoleUser{Name: uid, UID: uid}
	if u, err := user.LookupId(uid); err == nil {
		cu.Name = u.Username
	}
	return cu, nil
}
